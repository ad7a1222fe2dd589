// Command portal-services runs the LSLT WiFi portal backend: the printing,
// UniFi network access, and email services behind a single HTTP gateway.
//
// Configuration comes from the environment, with .env support for
// development. See internal/config for the variable list.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lslt/portal-services/internal/config"
	"github.com/lslt/portal-services/internal/gateway"
	"github.com/lslt/portal-services/internal/mailer"
	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/printer"
	"github.com/lslt/portal-services/internal/unifi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "portal-services:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Server)

	controller, err := unifi.NewWithConfig(&unifi.ClientConfig{
		ControllerURL:      cfg.UniFi.ControllerURL,
		Username:           cfg.UniFi.Username,
		Password:           cfg.UniFi.Password,
		Site:               cfg.UniFi.Site,
		InsecureSkipVerify: !cfg.UniFi.VerifyTLS,
		RateLimitPerMinute: cfg.UniFi.RateLimitPerMinute,
		Logger:             logger.With(observability.Field{Key: "component", Value: "unifi"}),
	})
	if err != nil {
		return err
	}

	emailLogger := logger.With(observability.Field{Key: "component", Value: "email"})

	email, err := mailer.NewService(mailer.ServiceConfig{
		Provider:              newEmailProvider(cfg.Email, emailLogger),
		FromEmail:             cfg.Email.FromEmail,
		FromName:              cfg.Email.FromName,
		CampaignRatePerSecond: cfg.Email.CampaignRatePerSecond,
		Logger:                emailLogger,
	})
	if err != nil {
		return err
	}

	queue := mailer.NewQueue(cfg.Email.QueueSize, emailLogger, nil)

	printers := printer.NewService(printer.ServiceConfig{
		ReceiptAddr:  cfg.Printer.ReceiptAddr,
		ReceiptWidth: cfg.Printer.ReceiptWidth,
		LabelAddr:    cfg.Printer.LabelAddr,
		CUPSPrinter:  cfg.Printer.CUPSPrinter,
		DialTimeout:  cfg.Printer.DialTimeout,
		Logger:       logger.With(observability.Field{Key: "component", Value: "printer"}),
	})

	srv := gateway.NewServer(gateway.Config{
		ListenAddr:  cfg.Server.ListenAddr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Controller:  controller,
		Printers:    printers,
		Email:       email,
		Queue:       queue,
		Logger:      logger,
	})

	logger.Info("starting portal services",
		observability.Field{Key: "listen_addr", Value: cfg.Server.ListenAddr},
		observability.Field{Key: "unifi_configured", Value: controller.Configured()},
		observability.Field{Key: "email_provider", Value: cfg.Email.Provider},
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case sig := <-done:
		logger.Info("shutdown signal received",
			observability.Field{Key: "signal", Value: sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("gateway shutdown failed",
			observability.Field{Key: "error", Value: err.Error()})
	}

	// Drain queued email jobs before dropping the provider and the
	// controller session, so in-flight sends finish against live backends.
	queue.Close()

	if err := controller.Logout(ctx); err != nil {
		logger.Warn("controller logout failed",
			observability.Field{Key: "error", Value: err.Error()})
	}

	if err := email.Close(); err != nil {
		logger.Warn("email provider close failed",
			observability.Field{Key: "error", Value: err.Error()})
	}

	logger.Info("portal services stopped")

	return nil
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Unknown values fall back to info-level text output.
func newLogger(cfg config.ServerConfig) observability.Logger {
	var level slog.Level

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return observability.NewSlogLogger(slog.New(handler))
}

// newEmailProvider picks the delivery transport from EMAIL_PROVIDER.
// Missing credentials return nil, which leaves the mail service reporting
// unavailable instead of failing startup; the portal can still print and
// manage network access without email.
func newEmailProvider(cfg config.EmailConfig, logger observability.Logger) mailer.Provider {
	switch strings.ToLower(cfg.Provider) {
	case "resend":
		if cfg.ResendAPIKey == "" {
			logger.Warn("RESEND_API_KEY not set, email delivery disabled")
			return nil
		}

		return mailer.NewResendProvider(mailer.ResendConfig{
			APIKey: cfg.ResendAPIKey,
			Logger: logger,
		})
	default:
		if cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
			logger.Warn("SMTP credentials not set, email delivery disabled")
			return nil
		}

		return mailer.NewSMTPProvider(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			UseTLS:   cfg.SMTPUseTLS,
			UseSSL:   cfg.SMTPUseSSL,
			Logger:   logger,
		})
	}
}
