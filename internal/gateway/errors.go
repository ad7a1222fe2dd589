package gateway

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/mailer"
	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/printer"
	"github.com/lslt/portal-services/internal/response"
	"github.com/lslt/portal-services/internal/unifi"
)

// statusFor maps a service error to an HTTP status. Client faults come
// back as 400, an unconfigured or unreachable backend as 503, an
// unknown printer as 404; everything else is a plain 500.
func statusFor(err error) int {
	var reqErr *response.RequestError

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, printer.ErrUnknownPrinter):
		return http.StatusNotFound
	case errors.Is(err, unifi.ErrNotConfigured),
		errors.Is(err, printer.ErrPrinterUnavailable),
		errors.Is(err, mailer.ErrUnavailable),
		errors.Is(err, mailer.ErrQueueFull),
		errors.Is(err, mailer.ErrQueueClosed):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// writeError logs server-side failures and writes the error envelope.
// Client faults are left to the request log.
func writeError(w http.ResponseWriter, logger observability.Logger, operation string, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error(operation+" failed",
			observability.Field{Key: "error", Value: err.Error()},
		)
	}

	response.Fail(w, status, err.Error())
}
