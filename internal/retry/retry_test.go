package retry_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lslt/portal-services/internal/retry"
)

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	retryable := []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
	for _, code := range retryable {
		assert.True(t, retry.ShouldRetry(code), "status %d should be retryable", code)
	}

	permanent := []int{
		http.StatusOK,
		http.StatusAccepted,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusUnprocessableEntity,
	}
	for _, code := range permanent {
		assert.False(t, retry.ShouldRetry(code), "status %d must not be retried", code)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty", header: "", want: 0},
		{name: "one second", header: "1", want: time.Second},
		{name: "two minutes", header: "120", want: 2 * time.Minute},
		{name: "zero", header: "0", want: 0},
		{name: "negative", header: "-5", want: 0},
		{name: "fractional rejected", header: "1.5", want: 0},
		{name: "garbage", header: "soon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, retry.ParseRetryAfter(tt.header))
		})
	}
}

func TestParseRetryAfterHTTPDate(t *testing.T) {
	t.Parallel()

	t.Run("future date", func(t *testing.T) {
		t.Parallel()

		header := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)

		wait := retry.ParseRetryAfter(header)
		assert.Greater(t, wait, 80*time.Second)
		assert.LessOrEqual(t, wait, 90*time.Second)
	})

	t.Run("past date falls back to zero", func(t *testing.T) {
		t.Parallel()

		header := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
		assert.Zero(t, retry.ParseRetryAfter(header))
	})

	t.Run("malformed date", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, retry.ParseRetryAfter("next tuesday"))
	})
}
