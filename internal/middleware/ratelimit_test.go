package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/lslt/portal-services/internal/middleware"
)

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.RateLimit(middleware.RateLimitConfig{})(http.DefaultTransport)

	start := time.Now()
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		resp.Body.Close()
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("5 unthrottled requests took %v", elapsed)
	}
}

func TestRateLimitThrottles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// 2 requests/sec, burst 1: third request needs ~1s of accumulated waits.
	transport := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: rate.NewLimiter(2, 1),
	})(http.DefaultTransport)

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}
	elapsed := time.Since(start)

	if elapsed < 800*time.Millisecond {
		t.Errorf("3 requests at 2/s took %v, expected throttling", elapsed)
	}
}

func TestRateLimitContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Tiny rate so the second request would wait a long time.
	transport := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: rate.NewLimiter(rate.Limit(0.01), 1),
	})(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	_, err = transport.RoundTrip(req)

	if err == nil {
		t.Fatal("expected error from canceled context")
	}

	if !strings.Contains(err.Error(), "context") {
		t.Errorf("error = %v, want context-related error", err)
	}
}
