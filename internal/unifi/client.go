package unifi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/httpclient"
	"github.com/lslt/portal-services/internal/middleware"
	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/ratelimit"
)

// Default configuration values for the controller client.
const (
	// DefaultSite is the controller site used when none is configured.
	DefaultSite = "default"
	// DefaultRateLimit is the default number of controller requests allowed per minute.
	DefaultRateLimit = 300
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// userAgent identifies the portal to the controller.
const userAgent = "LSLT-WiFi-Portal/1.0"

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
)

// ClientConfig holds configuration for the controller client.
type ClientConfig struct {
	// ControllerURL is the base URL of the UniFi controller
	// (e.g., "https://192.168.1.1"). A bare host gets an https scheme and
	// trailing slashes are stripped.
	ControllerURL string

	// Username and Password are controller admin credentials. When either
	// is empty the client is created in unconfigured mode: construction
	// succeeds but every operation returns ErrNotConfigured.
	Username string
	Password string

	// Site is the controller site name. Defaults to DefaultSite.
	Site string

	// HTTPClient is an optional custom HTTP client. If nil, a client is
	// created with Timeout and the standard middleware chain.
	HTTPClient *http.Client

	// InsecureSkipVerify disables TLS certificate verification. Local
	// controllers ship self-signed certificates, so New enables this.
	InsecureSkipVerify bool

	// RateLimitPerMinute caps requests to the controller per minute.
	// Defaults to DefaultRateLimit.
	RateLimitPerMinute int

	// Timeout is the HTTP client timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger receives structured client logs. Defaults to a no-op logger.
	Logger observability.Logger

	// Metrics receives client metrics. Defaults to a no-op recorder.
	Metrics observability.MetricsRecorder
}

// Client talks to one UniFi controller site using session authentication.
// It is safe for concurrent use; session replacement serializes on an
// internal mutex so racing staleness events trigger a single login.
type Client struct {
	controllerURL string
	username      string
	password      string
	site          string

	httpClient *httpclient.Client
	logger     observability.Logger
	metrics    observability.MetricsRecorder

	mu      sync.Mutex
	session *session
}

// New creates a controller client with default configuration and TLS
// verification disabled, matching how local controllers are deployed.
func New(controllerURL, username, password, site string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		ControllerURL:      controllerURL,
		Username:           username,
		Password:           password,
		Site:               site,
		InsecureSkipVerify: true,
	})
}

// NewWithConfig creates a controller client with custom configuration.
func NewWithConfig(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	if config.ControllerURL == "" {
		return nil, errors.New("controller URL is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	site := config.Site
	if site == "" {
		site = DefaultSite
	}

	rateLimit := config.RateLimitPerMinute
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []httpclient.Option{}
	if config.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(config.HTTPClient))
	}
	opts = append(opts,
		httpclient.WithTimeout(timeout),
		httpclient.WithUserAgent(userAgent),
	)

	middlewares := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(rateLimit),
			Logger:  logger,
			Metrics: metrics,
		}),
	}
	if config.InsecureSkipVerify {
		// TLSConfig replaces the transport, so it must stay innermost.
		middlewares = append(middlewares, middleware.TLSConfig(middleware.InsecureSkipVerify()))
	}
	opts = append(opts, httpclient.WithMiddleware(middlewares...))

	client := &Client{
		controllerURL: normalizeControllerURL(config.ControllerURL),
		username:      config.Username,
		password:      config.Password,
		site:          site,
		httpClient:    httpclient.New(opts...),
		logger:        logger,
		metrics:       metrics,
	}

	if !client.configured() {
		logger.Warn("unifi credentials not configured, controller operations will be rejected",
			observability.Field{Key: "controller_url", Value: client.controllerURL})
	}

	return client, nil
}

// normalizeControllerURL strips trailing slashes and defaults the scheme to
// https, the only scheme UniFi OS serves in practice.
func normalizeControllerURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	return trimmed
}

// ControllerURL returns the normalized controller base URL.
func (c *Client) ControllerURL() string {
	return c.controllerURL
}

// Site returns the controller site this client operates on.
func (c *Client) Site() string {
	return c.site
}

// Configured reports whether controller credentials were supplied.
func (c *Client) Configured() bool {
	return c.configured()
}

func (c *Client) configured() bool {
	return c.username != "" && c.password != ""
}

// login authenticates against the controller and returns the new session.
// Callers must hold c.mu.
func (c *Client) login(ctx context.Context) (*session, error) {
	payload, err := json.Marshal(loginRequest{
		Username: c.username,
		Password: c.password,
		Remember: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.controllerURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordError(loginPath, "auth")

		return nil, &AuthError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	now := time.Now()
	sess := newSession(resp.Header.Get("X-CSRF-Token"), resp.Cookies(), now)

	c.logger.Info("controller login successful",
		observability.Field{Key: "controller_url", Value: c.controllerURL},
		observability.Field{Key: "site", Value: c.site},
		observability.Field{Key: "expires_at", Value: sess.expiresAt.Format(time.RFC3339)},
	)

	return sess, nil
}

// ensureSession returns a valid session, logging in when none exists or
// the 24h trust window has lapsed.
func (c *Client) ensureSession(ctx context.Context) (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.valid(time.Now()) {
		return c.session, nil
	}

	sess, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	c.session = sess

	return sess, nil
}

// refreshSession forces a new login after the controller rejected stale.
// If another caller already replaced the session, the replacement is
// reused instead of logging in again.
func (c *Client) refreshSession(ctx context.Context, stale *session) (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != stale && c.session.valid(time.Now()) {
		return c.session, nil
	}

	sess, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	c.session = sess

	return sess, nil
}

// do issues an authenticated request against the controller and decodes
// the JSON response into out when out is non-nil.
//
// A 401 response triggers exactly one re-authentication followed by one
// retry of the original request with the fresh session. Any status >= 400
// after that surfaces as an APIError; transport failures surface as a
// NetworkError and are never retried.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if !c.configured() {
		return errors.WithStack(ErrNotConfigured)
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s %s request", method, path)
		}
	}

	sess, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, body, sess)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		c.logger.Warn("controller rejected session, re-authenticating",
			observability.Field{Key: "method", Value: method},
			observability.Field{Key: "path", Value: path},
		)
		c.metrics.RecordRetry(1, path)

		sess, err = c.refreshSession(ctx, sess)
		if err != nil {
			return err
		}

		resp, err = c.send(ctx, method, path, body, sess)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", method, path)
	}

	return nil
}

// send performs a single HTTP exchange carrying the session's cookies and
// CSRF token. The response body is the caller's to close.
func (c *Client) send(ctx context.Context, method, path string, body []byte, sess *session) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.controllerURL+path, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s request", method, path)
	}

	for _, cookie := range sess.cookies {
		req.AddCookie(cookie)
	}
	// The controller expects the CSRF token echoed on writes only.
	if sess.csrfToken != "" && isWriteMethod(method) {
		req.Header.Set("X-CSRF-Token", sess.csrfToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	return resp, nil
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Logout invalidates the controller session. Safe to call when no session
// exists. The local session is dropped even if the controller call fails,
// so the next operation starts from a clean login.
func (c *Client) Logout(ctx context.Context) error {
	if !c.configured() {
		return nil
	}

	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	if !sess.valid(time.Now()) {
		return nil
	}

	resp, err := c.send(ctx, http.MethodPost, logoutPath, nil, sess)
	if err != nil {
		return errors.Wrap(err, "controller logout failed")
	}
	defer resp.Body.Close()

	c.logger.Info("controller logout completed",
		observability.Field{Key: "controller_url", Value: c.controllerURL})

	return nil
}

// LastAuth returns when the current session was issued, or nil when no
// session is held.
func (c *Client) LastAuth() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	issued := c.session.issuedAt

	return &issued
}
