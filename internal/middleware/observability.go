package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/lslt/portal-services/internal/observability"
)

// Observability returns a middleware that logs every outbound exchange
// and records it as an HTTP request metric. Paths are normalized before
// they become metric labels so MAC addresses, rule ids, and site names
// do not blow up label cardinality.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observedTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observedTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		t.logger.Error("outbound request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: req.URL.String()},
			observability.Field{Key: "duration", Value: elapsed},
			observability.Field{Key: "error", Value: err.Error()},
		)
		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // the transport reports the error but does not own it
		return nil, err
	}

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "url", Value: req.URL.String()},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: elapsed},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("outbound request answered with error status", fields...)
	} else {
		t.logger.Debug("outbound request completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, normalizePath(req.URL.Path), resp.StatusCode, elapsed)

	return resp, nil
}

// Dynamic path segments seen in controller and mail API URLs.
var (
	// macSegment matches a colon- or hyphen-separated MAC address
	// segment, as in device-status routes.
	macSegment = regexp.MustCompile(`(?i)/[0-9a-f]{2}(?:[:-][0-9a-f]{2}){5}(/|$)`)
	// uuidSegment and hexIDSegment match the id formats the mail API
	// and the controller hand out (UUIDs and Mongo ObjectIDs).
	uuidSegment  = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	hexIDSegment = regexp.MustCompile(`[0-9a-f]{24}`)
	// numberSegment needs at least five digits so version segments like
	// /v2/ survive.
	numberSegment = regexp.MustCompile(`/\d{5,}(/|$)`)
	// siteSegment collapses /site/{name}/ regardless of the site name.
	siteSegment = regexp.MustCompile(`/site/[^/]+(/|$)`)

	// normalizedPaths caches results; outbound traffic concentrates on
	// a handful of endpoints.
	normalizedPaths sync.Map
)

// normalizePath replaces the dynamic segments of a URL path with stable
// placeholders, for example
// /proxy/network/v2/api/site/default/firewallrules/68a1b2c3d4e5f60718293a4b
// becomes /proxy/network/v2/api/site/:site/firewallrules/:id.
func normalizePath(path string) string {
	if cached, ok := normalizedPaths.Load(path); ok {
		//nolint:forcetypeassert // only strings are ever stored
		return cached.(string)
	}

	normalized := macSegment.ReplaceAllString(path, "/:mac$1")
	normalized = uuidSegment.ReplaceAllString(normalized, ":id")
	normalized = hexIDSegment.ReplaceAllString(normalized, ":id")
	normalized = numberSegment.ReplaceAllString(normalized, "/:id$1")
	normalized = siteSegment.ReplaceAllString(normalized, "/site/:site$1")

	normalizedPaths.Store(path, normalized)

	return normalized
}
