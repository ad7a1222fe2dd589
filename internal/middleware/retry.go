// Package middleware provides reusable RoundTripper middleware for the
// outbound HTTP clients: request/response observability, token-bucket rate
// limiting, transport-level retry (mail API only), and TLS configuration for
// controllers with self-signed certificates.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/retry"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// InitialWait seeds the backoff; each retry doubles it.
	InitialWait time.Duration

	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Retry returns a middleware that re-issues requests after transport
// failures and transient statuses (5xx, 429), backing off exponentially
// between attempts. A Retry-After header from the server overrides the
// computed backoff. Permanent client errors go straight through.
//
// Controller traffic must not pass through this middleware; the
// controller client's only retry is its own session re-authentication.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:        next,
			maxRetries:  cfg.MaxRetries,
			initialWait: cfg.InitialWait,
			logger:      cfg.Logger,
			metrics:     cfg.Metrics,
		}
	}
}

type retryTransport struct {
	next        http.RoundTripper
	maxRetries  int
	initialWait time.Duration
	logger      observability.Logger
	metrics     observability.MetricsRecorder
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	payload, err := bufferRequestBody(req)
	if err != nil {
		return nil, err
	}

	var (
		resp    *http.Response
		tripErr error
	)

	for attempt := 0; ; attempt++ {
		if payload != nil {
			req.Body = io.NopCloser(bytes.NewReader(payload))
		}

		resp, tripErr = t.next.RoundTrip(req)

		if tripErr == nil && !retry.ShouldRetry(resp.StatusCode) {
			return resp, nil
		}

		if attempt == t.maxRetries {
			break
		}

		wait := t.backoff(attempt, resp)

		t.logger.Warn("retrying request",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: req.URL.String()},
			observability.Field{Key: "attempt", Value: attempt + 1},
			observability.Field{Key: "wait", Value: wait},
		)
		t.metrics.RecordRetry(attempt+1, req.URL.Path)

		// Drain before closing so the connection goes back to the pool.
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		select {
		case <-time.After(wait):
		case <-req.Context().Done():
			return nil, errors.Wrap(req.Context().Err(), "aborted while waiting to retry")
		}
	}

	// Out of attempts: hand the caller the final response if there is
	// one, otherwise the final transport error.
	if resp != nil {
		return resp, nil
	}

	return nil, errors.Wrapf(tripErr, "request failed after %d attempts", t.maxRetries+1)
}

// backoff picks the wait before the next attempt: the server's
// Retry-After when it sent one, exponential doubling otherwise.
func (t *retryTransport) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if wait := retry.ParseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			return wait
		}
	}

	return t.initialWait << attempt
}

// bufferRequestBody reads the request body into memory so every retry
// can replay it. Requests without a body need no buffering.
func bufferRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	payload, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to buffer request body")
	}

	return payload, nil
}
