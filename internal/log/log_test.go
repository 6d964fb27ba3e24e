package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentStorage)
	l.Info("saved", FieldEntryID, 7)

	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "entry_id=7") {
		t.Errorf("unexpected log line: %s", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component logged more than once: %s", out)
	}
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %s", buf.String())
	}
}

func TestStructuredLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	r := httptest.NewRequest(http.MethodGet, "/reports/daily?date=2024-06-05", nil)

	sl.LogHTTPEnd(context.Background(), r, 404, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected WARN for 404: %s", buf.String())
	}
	buf.Reset()

	sl.LogHTTPEnd(context.Background(), r, 500, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected ERROR for 500: %s", buf.String())
	}
	buf.Reset()

	sl.LogEntryCreated(context.Background(), 3, "Akram", "2024-06-05", "400")
	if !strings.Contains(buf.String(), "customer=Akram") {
		t.Errorf("entry fields missing: %s", buf.String())
	}
	buf.Reset()

	sl.LogError(context.Background(), "boom", errors.New("disk full"), ComponentStorage, OpCreate, nil)
	if !strings.Contains(buf.String(), `error="disk full"`) {
		t.Errorf("error field missing: %s", buf.String())
	}
}
