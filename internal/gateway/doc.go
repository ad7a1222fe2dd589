// Package gateway exposes the portal services over one REST surface.
//
// # Endpoints
//
// Routes are grouped per service: /print/* for the printer fleet,
// /unifi/* for controller access control, /email/* for delivery, and
// GET /health for an aggregate snapshot of all three. Paths and response
// shapes match what the upstream portal application already consumes.
//
// # Envelope
//
// Success responses carry {"success": true, ...} with endpoint-specific
// fields; failures carry {"success": false, "error": ...} and a status
// derived from the service error: client faults map to 400, an
// unconfigured or unreachable backend to 503, an unknown printer to 404,
// everything else to 500.
//
// # Lifecycle
//
// Server wraps http.Server with timeouts and a graceful Shutdown. The
// caller owns the shutdown ordering across services; Server only drains
// in-flight HTTP requests.
package gateway
