package httpclient

import (
	"net/http"
	"time"
)

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Nil is ignored so
// callers can pass an optional client straight through.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithTimeout bounds each request end to end, including body reads.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.base.Timeout = timeout
	}
}

// WithTransport sets the base transport the middleware chain wraps.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.base.Transport = transport
	}
}

// WithUserAgent sets a User-Agent applied to every request that does
// not already carry one.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithMiddleware appends middleware to the chain. The first middleware
// passed becomes the outermost layer: requests flow through the slice
// in order on the way out and in reverse on the way back, so outer
// concerns (logging) belong before inner ones (rate limiting, retry).
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}
