package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
)

func TestRateLimiter_Limit(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	rl := NewRateLimiter(1, 2).WithMetrics(m)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/index.php", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence: %v", codes)
	}
	if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("10.0.0.1")); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/index.php", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr without port", remote: "192.168.1.5:43210", want: "192.168.1.5"},
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, remote: "10.0.0.1:1", want: "198.51.100.2"},
		{name: "unparsable remote addr", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getIP(req); got != tt.want {
				t.Fatalf("getIP() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	current := time.Date(2025, 11, 16, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return current }

	rl.getLimiter("stale")
	current = current.Add(2 * time.Hour)
	rl.getLimiter("fresh")

	if removed := rl.CleanupLimiters(time.Hour); removed != 1 {
		t.Fatalf("expected 1 limiter removed, got %d", removed)
	}
	if _, ok := rl.visitors["fresh"]; !ok {
		t.Fatalf("expected recent limiter to be kept")
	}
}
