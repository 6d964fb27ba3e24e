package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"milkbook/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func value(t *testing.T, p *RequestBodyParser, key string) string {
	t.Helper()
	v, err := p.Value(key)
	if err != nil {
		t.Fatalf("Value(%q) error = %v", key, err)
	}
	return v
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"customer_name":"  Akram ","morning_mound":2.50,"morning_sair":3,"flag":true,"rent":null}`)

	if !p.IsJSON() {
		t.Fatal("expected JSON body")
	}
	if got := value(t, p, "customer_name"); got != "  Akram " {
		t.Errorf("customer_name = %q, want it as submitted", got)
	}
	if got := value(t, p, "morning_mound"); got != "2.50" {
		t.Errorf("morning_mound = %q, want the literal number text", got)
	}
	if got := value(t, p, "morning_sair"); got != "3" {
		t.Errorf("morning_sair = %q", got)
	}
	if got := value(t, p, "flag"); got != "true" {
		t.Errorf("flag = %q", got)
	}
	if got := value(t, p, "rent"); got != "" {
		t.Errorf("rent = %q, null should read as absent", got)
	}
	if got := value(t, p, "missing"); got != "" {
		t.Errorf("missing = %q", got)
	}
}

func TestRequestBodyParser_JSONNonScalar(t *testing.T) {
	p := newParser(t, "application/json", `{"rent":[1,2],"bandi":{"v":1}}`)
	for _, key := range []string{"rent", "bandi"} {
		if _, err := p.Value(key); !errors.Is(err, errNotScalar) {
			t.Errorf("Value(%q) error = %v, want errNotScalar", key, err)
		}
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	form := url.Values{"customer_name": {"Bilal\x00"}, "rent": {"12,5"}}
	p := newParser(t, "application/x-www-form-urlencoded", form.Encode())

	if p.IsJSON() {
		t.Fatal("form body parsed as JSON")
	}
	if got := value(t, p, "customer_name"); got != "Bilal\x00" {
		t.Errorf("customer_name = %q, want it as submitted", got)
	}
	if got := value(t, p, "rent"); got != "12,5" {
		t.Errorf("rent = %q", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if value(t, p, "anything") != "" {
		t.Error("empty body should have no fields")
	}
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{"customer_name":`))
	req.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if err := p.Parse(); err == nil {
		t.Fatal("second Parse should return the same error")
	}
}

func TestRequestBodyParser_BodyTooLarge(t *testing.T) {
	body := "customer_name=" + strings.Repeat("a", maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestParseEntry(t *testing.T) {
	p := newParser(t, "application/json", `{
		"customer_name": "Akram",
		"date_start": "2024-06-05",
		"date_end": "2024-06-06",
		"morning_mound": "2,5",
		"morning_sair": "3.0",
		"morning_rate": 120,
		"evening_mound": 1.25,
		"evening_sair": 2,
		"evening_rate": "118.5",
		"paid_amount": "-10"
	}`)

	e, err := ParseEntry(p)
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if e.CustomerName != "Akram" || e.DateStart.String() != "2024-06-05" || e.DateEnd.String() != "2024-06-06" {
		t.Errorf("unexpected identity fields: %+v", e)
	}
	if !e.MorningMound.Equal(decimal.RequireFromString("2.5")) || e.MorningSair != 3 {
		t.Errorf("morning = %s x %d", e.MorningMound, e.MorningSair)
	}
	if !e.EveningRate.Equal(decimal.RequireFromString("118.5")) || e.EveningSair != 2 {
		t.Errorf("evening = %s x %d", e.EveningRate, e.EveningSair)
	}
	if !e.PaidAmount.Equal(decimal.NewFromInt(-10)) {
		t.Errorf("paid_amount = %s, negative values are kept", e.PaidAmount)
	}
	if !e.Rent.IsZero() || !e.Bandi.IsZero() || !e.Commission.IsZero() {
		t.Error("omitted amounts should be zero")
	}
}

func TestParseEntry_EmptyEndDate(t *testing.T) {
	p := newParser(t, "", "date_start=2024-06-05&date_end=")
	e, err := ParseEntry(p)
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if !e.DateEnd.IsZero() {
		t.Errorf("date_end = %v, want zero date", e.DateEnd)
	}
}

func TestParseEntry_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		wantErr error
	}{
		{"missing start date", "customer_name=A", "date_start", core.ErrInvalidDate},
		{"bad start date", "date_start=05/06/2024", "date_start", core.ErrInvalidDate},
		{"bad end date", "date_start=2024-06-05&date_end=tomorrow", "date_end", core.ErrInvalidDate},
		{"bad quantity", "date_start=2024-06-05&morning_mound=lots", "morning_mound", core.ErrInvalidNumber},
		{"fractional count", "date_start=2024-06-05&evening_sair=1.5", "evening_sair", core.ErrInvalidNumber},
		{"bad paid amount", "date_start=2024-06-05&paid_amount=1e", "paid_amount", core.ErrInvalidNumber},
		{"control character in number", "date_start=2024-06-05&rent=1%002", "rent", core.ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntry(newParser(t, "", tt.body))
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("ParseEntry() error = %v, want *FieldError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseEntry_RejectsNonScalarJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"array amount", `{"date_start":"2024-06-05","rent":[10]}`, "rent"},
		{"object count", `{"date_start":"2024-06-05","morning_sair":{"n":3}}`, "morning_sair"},
		{"array name", `{"date_start":"2024-06-05","customer_name":["A"]}`, "customer_name"},
		{"object date", `{"date_start":{"d":"2024-06-05"}}`, "date_start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntry(newParser(t, "application/json", tt.body))
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Fatalf("ParseEntry() error = %v, want FieldError on %s", err, tt.field)
			}
			if !errors.Is(err, errNotScalar) {
				t.Errorf("error %v does not wrap errNotScalar", err)
			}
		})
	}
}

func TestParseEntry_NullMeansZero(t *testing.T) {
	e, err := ParseEntry(newParser(t, "application/json", `{"date_start":"2024-06-05","rent":null,"evening_sair":null}`))
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if !e.Rent.IsZero() || e.EveningSair != 0 {
		t.Errorf("null fields = %s, %d; want zero", e.Rent, e.EveningSair)
	}
}

func TestParseEntry_KeepsCustomerNameAsSubmitted(t *testing.T) {
	e, err := ParseEntry(newParser(t, "", "customer_name=+Ram+Lal+&date_start=2024-06-05"))
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if e.CustomerName != " Ram Lal " {
		t.Errorf("CustomerName = %q", e.CustomerName)
	}
}

func TestParseDateAndMonthQuery(t *testing.T) {
	now := time.Date(2024, 6, 5, 22, 30, 0, 0, time.UTC)

	d, err := parseDateQuery(url.Values{}, now)
	if err != nil || d.String() != "2024-06-05" {
		t.Errorf("default date = %v, %v", d, err)
	}
	d, err = parseDateQuery(url.Values{"date": {"2023-01-31"}}, now)
	if err != nil || d.String() != "2023-01-31" {
		t.Errorf("explicit date = %v, %v", d, err)
	}
	if _, err := parseDateQuery(url.Values{"date": {"2023-02-30"}}, now); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("invalid date error = %v", err)
	}

	m, err := parseMonthQuery(url.Values{}, now)
	if err != nil || m != (core.YearMonth{Year: 2024, Month: time.June}) {
		t.Errorf("default month = %v, %v", m, err)
	}
	if _, err := parseMonthQuery(url.Values{"month": {"2024-13"}}, now); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("invalid month error = %v", err)
	}
}
