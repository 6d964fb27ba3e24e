package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "milkbook/internal/log"
	"milkbook/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Entries *services.EntryService
	Reports *services.ReportService
	Store   Pinger

	// Shared access secret; when both are empty the gate is off.
	AccessPassword     string
	AccessPasswordHash string

	Logger *applog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type appMetrics struct {
	started         time.Time
	requests        int64
	entriesCreated  int64
	reportsRendered int64
}

// Server is the ledger's HTTP server.
type Server struct {
	http.Server
	entries *services.EntryService
	reports *services.ReportService
	store   Pinger
	logger  *applog.Logger
	now     func() time.Time

	gate        *passwordGate
	rateLimiter *rateLimiter
	security    *securityMetrics
	metrics     *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		entries:     deps.Entries,
		reports:     deps.Reports,
		store:       deps.Store,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		now:         now,
		gate:        newPasswordGate(deps.AccessPassword, deps.AccessPasswordHash),
		rateLimiter: newRateLimiter(defaultRateLimit, defaultRateWindow),
		security:    &securityMetrics{},
		metrics:     &appMetrics{started: now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.withAccess(s.handleMetrics))

	mux.HandleFunc("POST /entries", s.withAccess(s.handleCreateEntry))
	mux.HandleFunc("GET /entries", s.withAccess(s.handleListEntries))
	mux.HandleFunc("GET /reports/today", s.withAccess(s.handleTodayReport))
	mux.HandleFunc("GET /reports/daily", s.withAccess(s.handleDailyReport))
	mux.HandleFunc("GET /reports/monthly", s.withAccess(s.handleMonthlyReport))
	mux.HandleFunc("GET /reports/daily.pdf", s.withAccess(s.handleDailyPDF))
	mux.HandleFunc("GET /reports/monthly.pdf", s.withAccess(s.handleMonthlyPDF))

	var handler http.Handler = mux
	handler = s.withSecurityHeaders(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get(requestIDHeader)
	})(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = withRequestID(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withRequestID assigns every request an id, echoed in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		r.Header.Set(requestIDHeader, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders adds security headers, rate limits POSTs, flags
// suspicious requests and logs each request's outcome.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.requests, 1)
		ctx := r.Context()
		logger := applog.FromContext(ctx)
		clientIP := extractClientIP(r)

		setSecurityHeaders(w.Header())
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			applog.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
		}()

		if detectSuspiciousRequest(r, s.security) {
			logger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.security) {
			logger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(rw)
			return
		}

		next.ServeHTTP(rw, r)
	})
}

// withAccess enforces the shared password.
func (s *Server) withAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.check(r) {
			atomic.AddInt64(&s.security.deniedAccess, 1)
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(), "Access denied",
				applog.FieldClientIP, extractClientIP(r),
				applog.FieldPath, r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Basic realm="milkbook"`)
			ErrorResponse(http.StatusUnauthorized, "access password required").Write(w)
			return
		}
		next(w, r)
	}
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
