package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func request(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	l := New(3, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if code := request(h, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i, code)
		}
	}
	if code := request(h, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("over-budget request: code = %d, want 429", code)
	}
	// Another IP has its own bucket.
	if code := request(h, "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("second IP: code = %d, want 200", code)
	}
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if code := request(h, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first request blocked: %d", code)
	}
	if code := request(h, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("second request allowed: %d", code)
	}
	time.Sleep(30 * time.Millisecond)
	if code := request(h, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("request after window blocked: %d", code)
	}
}
