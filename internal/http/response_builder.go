// Package http serves the milk ledger as a JSON and PDF API.
//
// This file implements a small builder for JSON and binary responses, plus
// the wire shapes of entries and reports.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"milkbook/internal/core"
	"milkbook/internal/services"
)

// ResponseBuilder provides a fluent API for building a response.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets v, encoded, as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		b.statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = append(body, '\n')
	return b
}

// Attachment sets a downloadable body.
func (b *ResponseBuilder) Attachment(contentType, filename string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.body = content
	return b
}

// Write sends the built response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// FieldErrorResponse is a 422 naming the offending field.
func FieldErrorResponse(fe *FieldError) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusUnprocessableEntity).
		JSON(errorBody{Error: fe.Err.Error(), Field: fe.Field})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// entryJSON is the wire form of an entry. Decimals are strings so no
// precision is lost.
type entryJSON struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	DateStart    string `json:"date_start"`
	DateEnd      string `json:"date_end"`
	MorningMound string `json:"morning_mound"`
	MorningSair  int64  `json:"morning_sair"`
	MorningRate  string `json:"morning_rate"`
	EveningMound string `json:"evening_mound"`
	EveningSair  int64  `json:"evening_sair"`
	EveningRate  string `json:"evening_rate"`
	Rent         string `json:"rent"`
	Commission   string `json:"commission"`
	Bandi        string `json:"bandi"`
	PaidAmount   string `json:"paid_amount"`
	TotalMilk    string `json:"total_milk"`
}

type summaryJSON struct {
	Entries      int    `json:"entries"`
	TotalMorning string `json:"total_morning"`
	TotalEvening string `json:"total_evening"`
	TotalMilk    string `json:"total_milk"`
	TotalPaid    string `json:"total_paid"`
	AvgRate      string `json:"avg_rate"`
}

type reportJSON struct {
	Kind    string      `json:"kind"`
	Period  string      `json:"period,omitempty"`
	Summary summaryJSON `json:"summary"`
	Entries []entryJSON `json:"entries"`
}

func toEntryJSON(e core.MilkEntry) entryJSON {
	return entryJSON{
		ID:           e.ID,
		CustomerName: e.CustomerName,
		DateStart:    e.DateStart.String(),
		DateEnd:      e.DateEnd.String(),
		MorningMound: e.MorningMound.String(),
		MorningSair:  e.MorningSair,
		MorningRate:  e.MorningRate.String(),
		EveningMound: e.EveningMound.String(),
		EveningSair:  e.EveningSair,
		EveningRate:  e.EveningRate.String(),
		Rent:         e.Rent.String(),
		Commission:   e.Commission.String(),
		Bandi:        e.Bandi.String(),
		PaidAmount:   e.PaidAmount.String(),
		TotalMilk:    e.TotalMilk().String(),
	}
}

func toReportJSON(r services.Report) reportJSON {
	entries := make([]entryJSON, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, toEntryJSON(e))
	}
	s := r.Summary
	return reportJSON{
		Kind:   r.Kind,
		Period: r.Period,
		Summary: summaryJSON{
			Entries:      s.Entries,
			TotalMorning: s.TotalMorning.String(),
			TotalEvening: s.TotalEvening.String(),
			TotalMilk:    s.TotalMilk.String(),
			TotalPaid:    s.TotalPaid.String(),
			AvgRate:      s.AvgRateDisplay(),
		},
		Entries: entries,
	}
}
