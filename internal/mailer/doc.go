// Package mailer implements the portal's email delivery service: templated
// messages, pluggable transport providers, and a background send queue.
//
// # Providers
//
// Delivery goes through the Provider interface. Two implementations ship:
// SMTPProvider speaks to a classic SMTP relay (STARTTLS or implicit TLS),
// ResendProvider uses the Resend HTTP API with transport-level retries on
// 5xx and 429 responses. The provider is chosen by configuration at startup.
//
// # Templates
//
// HTML bodies come from an embedded html/template set (voucher, campaign,
// welcome, notification, test). Interpolated values are escaped; campaign
// content is the one field rendered as raw HTML.
//
// # Queue
//
// The gateway does not block on delivery. Sends are enqueued on a buffered
// channel and executed by a single worker; each job gets a generated ID
// that is returned to the API caller immediately.
//
// # Unconfigured Mode
//
// Without provider credentials the service constructs normally and every
// send returns ErrUnavailable, keeping the rest of the portal usable.
//
// # Campaigns
//
// Bulk campaign sends are paced with a token-bucket limiter so a large
// recipient list cannot flood the relay. Per-recipient failures are
// tallied, not fatal.
package mailer
