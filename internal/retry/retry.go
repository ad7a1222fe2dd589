// Package retry decides which outbound mail API responses are worth
// retrying and how long to back off. Controller traffic never consults
// this package; the controller client's only retry is its single
// re-authentication pass.
package retry

import (
	"net/http"
	"strconv"
	"time"
)

// ShouldRetry reports whether a response status indicates a transient
// condition: 429 from the provider's rate limiter, or any 5xx. Client
// errors other than 429 are permanent and must surface.
func ShouldRetry(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	return statusCode >= http.StatusInternalServerError
}

// ParseRetryAfter converts a Retry-After header into a wait duration.
// Both forms RFC 9110 allows are handled: a delay in whole seconds and
// an HTTP-date. Unparseable values and delays already in the past yield
// zero, telling the caller to fall back to its own backoff.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds <= 0 {
			return 0
		}

		return time.Duration(seconds) * time.Second
	}

	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}

	wait := time.Until(when)
	if wait < 0 {
		return 0
	}

	return wait
}
