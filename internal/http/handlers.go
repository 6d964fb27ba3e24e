package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"milkbook/internal/core"
	applog "milkbook/internal/log"
	"milkbook/internal/report"
	"milkbook/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status": "ok",
		"uptime": s.now().Sub(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	status, code := "ready", http.StatusOK
	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	sec := s.security.snapshot()
	counters := []struct {
		name, help string
		value      int64
	}{
		{"http_requests_total", "Total number of HTTP requests", atomic.LoadInt64(&s.metrics.requests)},
		{"entries_created_total", "Total number of entries created", atomic.LoadInt64(&s.metrics.entriesCreated)},
		{"reports_rendered_total", "Total number of PDF reports rendered", atomic.LoadInt64(&s.metrics.reportsRendered)},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", sec.RateLimitHits},
		{"suspicious_requests_total", "Requests flagged as suspicious", sec.SuspiciousRequests},
		{"access_denied_total", "Requests rejected by the access gate", sec.DeniedAccess},
	}

	var b strings.Builder
	for _, c := range counters {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", c.name, c.help, c.name, c.name, c.value)
	}
	fmt.Fprintf(&b, "# HELP uptime_seconds Process uptime\n# TYPE uptime_seconds gauge\nuptime_seconds %d\n",
		int64(s.now().Sub(s.metrics.started).Seconds()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	entry, err := ParseEntry(parser)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			FieldErrorResponse(fe).Write(w)
			return
		}
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.entries.CreateEntry(ctx, entry)
	if err != nil {
		s.writeError(w, r, "Failed to create entry", applog.ComponentEntry, applog.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.metrics.entriesCreated, 1)
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogEntryCreated(ctx, id, entry.CustomerName, entry.DateStart.String(), entry.PaidAmount.String())

	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]int64{"id": id}).
		Write(w)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.All(r.Context())
	if err != nil {
		s.writeError(w, r, "Failed to list entries", applog.ComponentEntry, applog.OpList, err)
		return
	}
	NewResponse().JSON(toReportJSON(rep)).Write(w)
}

func (s *Server) handleTodayReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Today(r.Context(), s.now())
	if err != nil {
		s.writeError(w, r, "Failed to build today's report", applog.ComponentReport, applog.OpRead, err)
		return
	}
	NewResponse().JSON(toReportJSON(rep)).Write(w)
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.reports.Daily(r.Context(), date)
	if err != nil {
		s.writeError(w, r, "Failed to build daily report", applog.ComponentReport, applog.OpRead, err)
		return
	}
	NewResponse().JSON(toReportJSON(rep)).Write(w)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.reports.Monthly(r.Context(), month)
	if err != nil {
		s.writeError(w, r, "Failed to build monthly report", applog.ComponentReport, applog.OpRead, err)
		return
	}
	NewResponse().JSON(toReportJSON(rep)).Write(w)
}

func (s *Server) handleDailyPDF(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	doc, rep, err := s.reports.DailyPDF(r.Context(), date)
	s.writePDF(w, r, doc, rep, err)
}

func (s *Server) handleMonthlyPDF(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	doc, rep, err := s.reports.MonthlyPDF(r.Context(), month)
	s.writePDF(w, r, doc, rep, err)
}

func (s *Server) writePDF(w http.ResponseWriter, r *http.Request, doc []byte, rep services.Report, err error) {
	if err != nil {
		s.writeError(w, r, "Failed to render report", applog.ComponentReport, applog.OpRender, err)
		return
	}
	atomic.AddInt64(&s.metrics.reportsRendered, 1)
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogReportRendered(r.Context(), rep.Kind, rep.Period, len(rep.Entries), len(doc))

	NewResponse().Attachment("application/pdf", rep.FileName(), doc).Write(w)
}

// writeError maps service errors to status codes. Storage failures and
// anything unrecognised are a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, msg, component, op string, err error) {
	switch {
	case errors.Is(err, services.ErrNoEntries):
		NotFoundError("no data found").Write(w)
	case errors.Is(err, report.ErrEncoding):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrInvalidMonth), errors.Is(err, core.ErrInvalidNumber):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), msg, err, component, op, nil)
		InternalServerError("internal error").Write(w)
	}
}
