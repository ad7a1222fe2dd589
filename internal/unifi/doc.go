// Package unifi provides a client for UniFi OS controllers using
// username/password session authentication.
//
// Unlike API-key integrations, UniFi OS session auth hands out a CSRF token
// and a set of cookies on login. Cookies accompany every subsequent request
// and the token is echoed back on writes. Sessions are trusted locally for a
// fixed 24 hour window and refreshed lazily; when the controller evicts a
// session early, the client re-authenticates transparently and retries the
// rejected request exactly once.
//
// # Authentication
//
// Credentials are plain controller admin (or limited-admin) accounts:
//
//	client, err := unifi.New("https://192.168.1.1", "portal", "secret", "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Logout(context.Background())
//
// The first operation triggers the login; there is no separate Connect step.
// A client constructed without credentials stays usable but every operation
// fails with ErrNotConfigured, so a portal can keep serving its other
// services when the controller integration is switched off.
//
// # Features
//
//   - Device blocking and unblocking via named firewall rules
//   - Guest authorization with a bounded duration
//   - Device status lookup across active clients
//   - Blocked-device inventory, network stats, site info
//   - Controller health probing
//
// # Error Handling
//
// The client uses github.com/cockroachdb/errors and three concrete error
// types. AuthError means the controller rejected the credentials, APIError
// means an authenticated request answered with status >= 400 after the
// single re-authentication retry, and NetworkError means the controller was
// never reached. Use the Is helpers or errors.As:
//
//	status, err := client.GetDeviceStatus(ctx, mac)
//	if unifi.IsNetworkError(err) {
//	    // controller offline, back off
//	}
//
// # Rate Limiting
//
// Requests are throttled locally, 300 per minute by default, to keep a
// misbehaving portal from hammering the controller. There is no transport
// level retry: a failed request surfaces immediately so the caller decides.
//
// # TLS
//
// Certificate verification is disabled by default because local controllers
// ship self-signed certificates. Set InsecureSkipVerify to false in
// ClientConfig when the controller has a real certificate.
package unifi
