package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct client", "203.0.113.7:5555", "", "", "203.0.113.7"},
		{"untrusted peer cannot forward", "203.0.113.7:5555", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy forwards first hop", "10.0.0.2:80", "198.51.100.1, 10.0.0.9", "", "198.51.100.1"},
		{"trusted proxy real ip", "127.0.0.1:80", "", "198.51.100.2", "198.51.100.2"},
		{"trusted proxy bad header", "192.168.1.1:80", "garbage", "", "192.168.1.1"},
		{"no port", "198.51.100.3", "", "", "198.51.100.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		ua     string
		want   bool
	}{
		{"normal report", http.MethodGet, "/reports/monthly?month=2024-06", "Mozilla/5.0", false},
		{"curl is fine", http.MethodPost, "/entries", "curl/8.4.0", false},
		{"path traversal", http.MethodGet, "/reports/../../etc/passwd", "", true},
		{"dotenv probe", http.MethodGet, "/.env", "", true},
		{"sql injection in query", http.MethodGet, "/reports/daily?date=1%27%20union%20select", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
		{"long url", http.MethodGet, "/entries?x=" + strings.Repeat("a", 2100), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.ua != "" {
				req.Header.Set("User-Agent", tt.ua)
			}
			metrics := &securityMetrics{}
			if got := detectSuspiciousRequest(req, metrics); got != tt.want {
				t.Errorf("detectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			if tt.want && metrics.snapshot().SuspiciousRequests != 1 {
				t.Error("suspicious request not counted")
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3, time.Minute)
	defer rl.stop()
	rl.now = func() time.Time { return now }
	metrics := &securityMetrics{}

	for i := 0; i < 3; i++ {
		if !rl.allow("a", metrics) {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	if rl.allow("a", metrics) {
		t.Fatal("fourth request in window allowed")
	}
	if !rl.allow("b", metrics) {
		t.Fatal("other client should have its own budget")
	}
	if metrics.snapshot().RateLimitHits != 1 {
		t.Errorf("RateLimitHits = %d, want 1", metrics.snapshot().RateLimitHits)
	}

	now = now.Add(time.Minute)
	if !rl.allow("a", metrics) {
		t.Fatal("new window should reset the budget")
	}

	now = now.Add(11 * time.Minute)
	if n := rl.cleanupStaleEntries(); n != 2 {
		t.Errorf("cleanupStaleEntries() = %d, want 2", n)
	}

	rl.stop()
	rl.stop()
}

func TestNewRateLimiterDefaults(t *testing.T) {
	rl := newRateLimiter(0, 0)
	defer rl.stop()
	if rl.limit != defaultRateLimit || rl.window != defaultRateWindow {
		t.Errorf("limit/window = %d/%v", rl.limit, rl.window)
	}
}

func TestPasswordGate(t *testing.T) {
	if !newPasswordGate("", "").check(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("disabled gate should allow everything")
	}

	g := newPasswordGate("latte", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if g.check(req) {
		t.Error("missing password allowed")
	}
	req.Header.Set(accessPasswordHeader, "latt")
	if g.check(req) {
		t.Error("prefix of password allowed")
	}
	req.Header.Set(accessPasswordHeader, "latte")
	if !g.check(req) {
		t.Error("correct password rejected")
	}
}
