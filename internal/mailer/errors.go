package mailer

import "github.com/cockroachdb/errors"

// ErrUnavailable is returned by every send operation when no delivery
// provider is configured. Callers should surface it as a service-level
// outage rather than a request failure.
var ErrUnavailable = errors.New("email service is not configured")

// ErrQueueFull is returned by Enqueue when the send queue has no room.
var ErrQueueFull = errors.New("email queue is full")

// ErrQueueClosed is returned by Enqueue after the queue has been shut down.
var ErrQueueClosed = errors.New("email queue is closed")
