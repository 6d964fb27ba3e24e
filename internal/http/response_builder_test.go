package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"milkbook/internal/core"
	"milkbook/internal/services"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not set")
	}
	if w.Body.String() != "{\"id\":7}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_UnencodableJSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(map[string]any{"bad": make(chan int)}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestResponseBuilder_Attachment(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Attachment("application/pdf", "daily_report_2024-06-05.pdf", []byte("%PDF-1.3")).Write(w)

	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="daily_report_2024-06-05.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if w.Body.String() != "%PDF-1.3" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ResponseBuilder
		wantCode int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"not found", NotFoundError("bad"), http.StatusNotFound},
		{"internal", InternalServerError("bad"), http.StatusInternalServerError},
		{"field", FieldErrorResponse(&FieldError{Field: "rent", Err: core.ErrInvalidNumber}), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestToReportJSON(t *testing.T) {
	e := core.MilkEntry{
		ID:           3,
		CustomerName: "Akram",
		DateStart:    core.NewDate(2024, 6, 5),
		MorningMound: decimal.RequireFromString("2.5"),
		MorningRate:  decimal.NewFromInt(10),
		EveningMound: decimal.RequireFromString("1.5"),
		EveningRate:  decimal.NewFromInt(20),
		PaidAmount:   decimal.NewFromInt(50),
	}
	entries := []core.MilkEntry{e}
	out := toReportJSON(services.Report{
		Kind:    "daily",
		Period:  "2024-06-05",
		Entries: entries,
		Summary: core.Summarize(entries),
	})

	if len(out.Entries) != 1 {
		t.Fatalf("entries = %d", len(out.Entries))
	}
	got := out.Entries[0]
	if got.DateStart != "2024-06-05" || got.DateEnd != "" {
		t.Errorf("dates = %q / %q", got.DateStart, got.DateEnd)
	}
	if got.TotalMilk != "4" || got.Rent != "0" {
		t.Errorf("total_milk = %q, rent = %q", got.TotalMilk, got.Rent)
	}
	// (2.5*10 + 1.5*20) / 4 = 13.75
	if out.Summary.AvgRate != "13.75" || out.Summary.TotalMilk != "4" || out.Summary.Entries != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
}

func TestToReportJSON_EmptyHasEntriesArray(t *testing.T) {
	out := toReportJSON(services.Report{Kind: "daily", Summary: core.Summarize(nil)})
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	if _, ok := decoded["entries"].([]any); !ok {
		t.Errorf("entries should encode as an empty array, got %s", raw)
	}
}
