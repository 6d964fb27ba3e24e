// Package http serves the milk ledger as a JSON and PDF API.
//
// This file holds request parsing: a body reader accepting JSON or form
// encoding, and the coercion of entry fields into core types.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"milkbook/internal/core"
)

// maxBodyBytes caps a request body.
const maxBodyBytes = 1 << 20

// RequestBodyParser reads a body once and exposes its fields whether it was
// sent as JSON or as a form.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it is an object, and as a form
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]interface{})
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(body))
	return p.err
}

// errNotScalar rejects JSON arrays and objects where a field value belongs.
var errNotScalar = errors.New("expected a string or number")

// Value returns a field exactly as submitted, or "" when it is absent or
// JSON null.
func (p *RequestBodyParser) Value(key string) (string, error) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return "", nil
		}
		return stringValue(val)
	}
	if p.formData != nil {
		return p.formData.Get(key), nil
	}
	return "", nil
}

// IsJSON reports whether the body was decoded as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []interface{}:
		return "", fmt.Errorf("%w, got an array", errNotScalar)
	case map[string]interface{}:
		return "", fmt.Errorf("%w, got an object", errNotScalar)
	default:
		return "", fmt.Errorf("%w, got %T", errNotScalar, v)
	}
}

// FieldError names the entry field that failed to coerce.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseEntry coerces the submitted fields into an entry. date_start is
// required; every other field may be omitted and defaults to zero. The
// customer name is stored as submitted.
func ParseEntry(p *RequestBodyParser) (core.MilkEntry, error) {
	get := func(name string) (string, error) {
		v, err := p.Value(name)
		if err != nil {
			return "", &FieldError{Field: name, Err: err}
		}
		return v, nil
	}

	var (
		e   core.MilkEntry
		err error
	)
	if e.CustomerName, err = get("customer_name"); err != nil {
		return core.MilkEntry{}, err
	}

	v, err := get("date_start")
	if err != nil {
		return core.MilkEntry{}, err
	}
	if e.DateStart, err = core.ParseDate(v); err != nil {
		return core.MilkEntry{}, &FieldError{Field: "date_start", Err: err}
	}
	if v, err = get("date_end"); err != nil {
		return core.MilkEntry{}, err
	}
	if strings.TrimSpace(v) != "" {
		if e.DateEnd, err = core.ParseDate(v); err != nil {
			return core.MilkEntry{}, &FieldError{Field: "date_end", Err: err}
		}
	}

	fields := []struct {
		name string
		set  func(*core.MilkEntry, string) error
	}{
		{"morning_mound", func(m *core.MilkEntry, s string) (err error) { m.MorningMound, err = core.ParseDecimal(s); return }},
		{"morning_rate", func(m *core.MilkEntry, s string) (err error) { m.MorningRate, err = core.ParseDecimal(s); return }},
		{"evening_mound", func(m *core.MilkEntry, s string) (err error) { m.EveningMound, err = core.ParseDecimal(s); return }},
		{"evening_rate", func(m *core.MilkEntry, s string) (err error) { m.EveningRate, err = core.ParseDecimal(s); return }},
		{"rent", func(m *core.MilkEntry, s string) (err error) { m.Rent, err = core.ParseDecimal(s); return }},
		{"commission", func(m *core.MilkEntry, s string) (err error) { m.Commission, err = core.ParseDecimal(s); return }},
		{"bandi", func(m *core.MilkEntry, s string) (err error) { m.Bandi, err = core.ParseDecimal(s); return }},
		{"paid_amount", func(m *core.MilkEntry, s string) (err error) { m.PaidAmount, err = core.ParseDecimal(s); return }},
		{"morning_sair", func(m *core.MilkEntry, s string) (err error) { m.MorningSair, err = core.ParseCount(s); return }},
		{"evening_sair", func(m *core.MilkEntry, s string) (err error) { m.EveningSair, err = core.ParseCount(s); return }},
	}
	for _, f := range fields {
		v, err := get(f.name)
		if err != nil {
			return core.MilkEntry{}, err
		}
		if err := f.set(&e, v); err != nil {
			return core.MilkEntry{}, &FieldError{Field: f.name, Err: err}
		}
	}
	return e, nil
}

// parseDateQuery reads ?date=, defaulting to the day of now.
func parseDateQuery(q url.Values, now time.Time) (core.Date, error) {
	v := strings.TrimSpace(q.Get("date"))
	if v == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(v)
}

// parseMonthQuery reads ?month=, defaulting to the month of now.
func parseMonthQuery(q url.Values, now time.Time) (core.YearMonth, error) {
	v := strings.TrimSpace(q.Get("month"))
	if v == "" {
		return core.DateOf(now).YearMonth(), nil
	}
	return core.ParseYearMonth(v)
}
