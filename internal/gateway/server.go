package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/unifi"
)

// Server timeouts. Print jobs talk to physical hardware, so writes get
// more room than reads.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 90 * time.Second
)

// Config wires the gateway to the services it fronts.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds.
	ListenAddr string

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// Controller serves the /unifi endpoints.
	Controller unifi.ControllerClient

	// Printers serves the /print endpoints.
	Printers PrintService

	// Email and Queue serve the /email endpoints.
	Email EmailService
	Queue JobQueue

	// Logger for request and handler events. Defaults to a no-op
	// logger.
	Logger observability.Logger

	// Metrics receives per-request metrics. Defaults to no-op.
	Metrics observability.MetricsRecorder
}

// Server is the portal's HTTP front door. It owns only the HTTP
// lifecycle; shutting down the services behind it is the caller's job.
type Server struct {
	httpServer *http.Server
	logger     observability.Logger
}

// NewServer builds the router and the HTTP server around it.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           newRouter(cfg, logger, metrics),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger: logger,
	}
}

// Handler returns the request router. Tests drive it directly without a
// listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown is called. A
// clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("gateway listening",
		observability.Field{Key: "addr", Value: s.httpServer.Addr},
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return errors.Wrap(err, "gateway server failed")
}

// Shutdown stops accepting requests and drains in-flight ones until the
// context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gateway shutting down")

	return errors.Wrap(s.httpServer.Shutdown(ctx), "gateway shutdown failed")
}
