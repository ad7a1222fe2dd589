package unifi

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNotConfigured is returned by every operation when the client was built
// without controller credentials. The gateway maps it to 503 Service
// Unavailable so the rest of the portal keeps working.
var ErrNotConfigured = errors.New("unifi controller is not configured")

// AuthError reports a rejected login. It carries the controller's status
// code and response body for diagnostics.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: status=%d, body=%s", e.StatusCode, e.Body)
}

// APIError reports a controller response with status >= 400 on an
// authenticated request, after the single re-authentication retry.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("controller API error: status=%d, body=%s", e.StatusCode, e.Body)
}

// NetworkError wraps transport failures such as DNS errors, refused
// connections, and timeouts. The request never reached the controller, so
// the client does not retry it.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("controller unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is or wraps an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError

	return errors.As(err, &authErr)
}

// IsAPIError reports whether err is or wraps an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr)
}

// IsNetworkError reports whether err is or wraps a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError

	return errors.As(err, &netErr)
}
