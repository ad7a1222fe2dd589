// Package httpclient builds the outbound HTTP clients used by the portal
// services (controller API, mail API) with middleware support.
package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Middleware wraps an http.RoundTripper to add behavior around the
// exchange. The first middleware in a chain is the outermost layer.
type Middleware func(http.RoundTripper) http.RoundTripper

// Client is an http.Client wrapper assembled from options and a
// middleware chain.
type Client struct {
	base       *http.Client
	middleware []Middleware
	userAgent  string
}

// New builds a client. Without options it behaves like a plain
// http.Client with a 30 second timeout.
func New(opts ...Option) *Client {
	c := &Client{
		base:       &http.Client{Timeout: defaultTimeout},
		middleware: []Middleware{},
	}

	for _, opt := range opts {
		opt(c)
	}

	// The User-Agent layer sits outermost. Inner layers such as TLSConfig
	// replace the transport wholesale and would drop anything inside them.
	if c.userAgent != "" {
		c.middleware = append([]Middleware{userAgentMiddleware(c.userAgent)}, c.middleware...)
	}

	if len(c.middleware) > 0 {
		transport := c.base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		// Wrap innermost-first so the head of the slice ends up outermost.
		for i := len(c.middleware) - 1; i >= 0; i-- {
			transport = c.middleware[i](transport)
		}

		c.base.Transport = transport
	}

	return c
}

// Do executes a request through the assembled chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.base.Do(req)
}

// HTTPClient exposes the underlying http.Client for libraries that
// accept one directly, such as the Resend SDK.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// userAgentMiddleware sets the User-Agent header on requests that do not
// already carry one.
func userAgentMiddleware(agent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("User-Agent") == "" {
				req = req.Clone(req.Context())
				req.Header.Set("User-Agent", agent)
			}

			return next.RoundTrip(req)
		})
	}
}
