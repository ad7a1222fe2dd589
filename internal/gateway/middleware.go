package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lslt/portal-services/internal/observability"
)

// requestLogger logs every request and records it against the chi route
// pattern rather than the raw path, keeping metric cardinality bounded
// regardless of path parameters.
func requestLogger(logger observability.Logger, metrics observability.MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}

			fields := []observability.Field{
				{Key: "method", Value: r.Method},
				{Key: "path", Value: r.URL.Path},
				{Key: "status", Value: ww.Status()},
				{Key: "duration", Value: duration},
				{Key: "request_id", Value: chimiddleware.GetReqID(r.Context())},
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case ww.Status() >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Debug("request completed", fields...)
			}

			metrics.RecordHTTPRequest(r.Method, pattern, ww.Status(), duration)
		})
	}
}
