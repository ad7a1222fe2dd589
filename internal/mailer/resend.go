package mailer

import (
	"context"
	"encoding/base64"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/resend/resend-go/v3"

	"github.com/lslt/portal-services/internal/httpclient"
	"github.com/lslt/portal-services/internal/middleware"
	"github.com/lslt/portal-services/internal/observability"
)

const (
	resendTimeout    = 30 * time.Second
	resendMaxRetries = 3
	resendRetryWait  = time.Second
)

// ResendConfig configures the Resend API provider.
type ResendConfig struct {
	// APIKey authenticates with the Resend API.
	APIKey string

	// BaseURL overrides the API endpoint. Leave empty for production.
	BaseURL string

	// Logger for send lifecycle events. Defaults to a no-op logger.
	Logger observability.Logger

	// Metrics receives retry and request metrics. Defaults to no-op.
	Metrics observability.MetricsRecorder
}

// ResendProvider delivers mail through the Resend HTTP API. Transient API
// failures (5xx, 429) are retried at the transport level.
type ResendProvider struct {
	client *resend.Client
	apiKey string
	logger observability.Logger
}

// NewResendProvider creates a Resend provider backed by an HTTP client
// with observability and retry middleware.
func NewResendProvider(cfg ResendConfig) *ResendProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	hc := httpclient.New(
		httpclient.WithTimeout(resendTimeout),
		httpclient.WithMiddleware(
			middleware.Observability(logger, metrics),
			middleware.Retry(middleware.RetryConfig{
				MaxRetries:  resendMaxRetries,
				InitialWait: resendRetryWait,
				Logger:      logger,
				Metrics:     metrics,
			}),
		),
	)

	client := resend.NewCustomClient(hc.HTTPClient(), cfg.APIKey)
	if cfg.BaseURL != "" {
		if parsed, err := url.Parse(cfg.BaseURL); err == nil {
			client.BaseURL = parsed
		}
	}

	return &ResendProvider{client: client, apiKey: cfg.APIKey, logger: logger}
}

// Name returns "resend".
func (p *ResendProvider) Name() string {
	return "resend"
}

// Validate reports whether an API key is present.
func (p *ResendProvider) Validate() error {
	if p.apiKey == "" {
		return errors.New("resend api key is required")
	}

	return nil
}

// Send delivers one message through the Resend API.
func (p *ResendProvider) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From(),
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}

	for _, att := range msg.Attachments {
		raw, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return errors.Wrapf(err, "attachment %s is not valid base64", att.Filename)
		}

		params.Attachments = append(params.Attachments, &resend.Attachment{
			Content:     raw,
			Filename:    att.Filename,
			ContentType: att.ContentType,
		})
	}

	sent, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return errors.Wrap(err, "failed to send via resend")
	}

	p.logger.Debug("resend message delivered",
		observability.Field{Key: "to", Value: msg.To},
		observability.Field{Key: "resend_id", Value: sent.Id},
	)

	return nil
}

// Close releases nothing; the API client is stateless.
func (p *ResendProvider) Close() error {
	return nil
}
