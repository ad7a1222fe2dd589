package observability

import "time"

// MetricsRecorder receives operational counters from the HTTP middleware and
// the services. A Prometheus or StatsD backend can be dropped in by the
// daemon; the services only ever see this interface.
type MetricsRecorder interface {
	// RecordHTTPRequest records one outbound HTTP call with its
	// normalized path, status code, and latency.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordRetry records a retry attempt against an endpoint.
	RecordRetry(attempt int, endpoint string)

	// RecordRateLimit records time spent blocked on the rate limiter.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error by operation and classification.
	RecordError(operation, errorType string)

	// RecordJob records a completed service job (print job, email send,
	// campaign batch) with its outcome and duration.
	RecordJob(component, kind string, success bool, duration time.Duration)
}

// noopMetricsRecorder drops every measurement on the floor.
type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns the discarding recorder, used wherever no
// metrics backend was configured.
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordRetry(int, string)                              {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
func (m *noopMetricsRecorder) RecordJob(string, string, bool, time.Duration)        {}
