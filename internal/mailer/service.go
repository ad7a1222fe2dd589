package mailer

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/ratelimit"
)

const (
	defaultSiteName        = "LSLT Portal"
	defaultSiteLocation    = "Main Location"
	defaultCampaignSubject = "Special Offer"
	defaultCampaignRate    = 10
	campaignBaseURL        = "https://portal.lslt.local"

	timestampLayout = "2006-01-02 15:04:05"
)

// notificationSubjects maps notification kinds to their subject lines.
var notificationSubjects = map[string]string{
	"security_alert":       "Security Alert - LSLT Portal",
	"voucher_redeemed":     "Voucher Redeemed Successfully",
	"loyalty_tier_upgrade": "Congratulations! Loyalty Tier Upgraded",
	"device_blocked":       "Device Access Restricted",
}

// ServiceConfig configures the email service.
type ServiceConfig struct {
	// Provider is the delivery transport. May be nil, in which case every
	// send returns ErrUnavailable.
	Provider Provider

	// Templates renders message bodies. Defaults to the embedded set.
	Templates *TemplateEngine

	// FromEmail and FromName set the originator on every message.
	FromEmail string
	FromName  string

	// CampaignRatePerSecond paces bulk campaign sends. Defaults to 10.
	CampaignRatePerSecond int

	// Logger for delivery events. Defaults to a no-op logger.
	Logger observability.Logger

	// Metrics receives delivery metrics. Defaults to no-op.
	Metrics observability.MetricsRecorder
}

// Service sends templated portal emails through a configured provider.
type Service struct {
	provider        Provider
	templates       *TemplateEngine
	fromEmail       string
	fromName        string
	campaignLimiter *rate.Limiter
	logger          observability.Logger
	metrics         observability.MetricsRecorder

	mu       sync.Mutex
	sent     int
	failed   int
	lastSent time.Time
}

// NewService creates the email service. Construction succeeds without a
// provider so the gateway can run with email switched off.
func NewService(cfg ServiceConfig) (*Service, error) {
	templates := cfg.Templates
	if templates == nil {
		var err error

		templates, err = NewTemplateEngine()
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	campaignRate := cfg.CampaignRatePerSecond
	if campaignRate <= 0 {
		campaignRate = defaultCampaignRate
	}

	svc := &Service{
		provider:        cfg.Provider,
		templates:       templates,
		fromEmail:       cfg.FromEmail,
		fromName:        cfg.FromName,
		campaignLimiter: ratelimit.NewPerSecondLimiter(campaignRate),
		logger:          logger,
		metrics:         metrics,
	}

	if svc.available() != nil {
		logger.Warn("email service starting unconfigured, sends will be rejected")
	}

	return svc, nil
}

// Configured reports whether a working provider is attached.
func (s *Service) Configured() bool {
	return s.available() == nil
}

// Templates exposes the template engine, letting the gateway validate
// template names before queueing work.
func (s *Service) Templates() *TemplateEngine {
	return s.templates
}

// SendTemplate delivers one templated email. The template data is passed
// to the template as-is.
func (s *Service) SendTemplate(ctx context.Context, to, subject, templateName string, data map[string]any, attachments []Attachment) error {
	return s.send(ctx, to, subject, templateName, data, attachments)
}

// SendVoucher emails a voucher to a customer. The voucher map uses the
// portal's wire keys: code, title, type, value, description, qr_code,
// expires_at.
func (s *Service) SendVoucher(ctx context.Context, to string, voucher map[string]any) error {
	v := mergeMaps(map[string]any{
		"title":      "Voucher",
		"code":       "",
		"type":       "",
		"expires_at": "",
	}, voucher)

	data := map[string]any{
		"voucher":       v,
		"site_name":     defaultSiteName,
		"site_location": defaultSiteLocation,
		"timestamp":     time.Now().Format(timestampLayout),
	}

	subject := fmt.Sprintf("Your %s - %s", toString(v["title"]), toString(v["code"]))

	return s.send(ctx, to, subject, "voucher.html", data, nil)
}

// SendWelcome emails a loyalty-program welcome to a new customer. The
// customer map must carry an "email" key.
func (s *Service) SendWelcome(ctx context.Context, customer map[string]any) error {
	to := toString(customer["email"])
	if to == "" {
		return errors.New("customer email is required")
	}

	c := mergeMaps(map[string]any{
		"name":           "",
		"loyalty_tier":   "",
		"visit_count":    0,
		"loyalty_points": 0,
		"vouchers_count": 0,
	}, customer)

	data := map[string]any{
		"customer":      c,
		"site_name":     defaultSiteName,
		"site_location": defaultSiteLocation,
		"timestamp":     time.Now().Format(timestampLayout),
	}

	subject := fmt.Sprintf("Welcome to LSLT Portal, %s!", toString(c["name"]))

	return s.send(ctx, to, subject, "welcome.html", data, nil)
}

// CampaignResult tallies a bulk campaign send.
type CampaignResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// SendCampaign delivers a campaign to every recipient, paced by the
// campaign rate limiter. Per-recipient failures are tallied and do not
// stop the run; only context cancellation aborts it.
func (s *Service) SendCampaign(ctx context.Context, campaign map[string]any, recipients []string) (*CampaignResult, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	c := mergeMaps(map[string]any{"subject": defaultCampaignSubject}, campaign)
	subject := toString(c["subject"])

	result := &CampaignResult{Errors: []string{}}

	for _, recipient := range recipients {
		if err := s.campaignLimiter.Wait(ctx); err != nil {
			return result, errors.Wrap(err, "campaign aborted")
		}

		data := map[string]any{
			"campaign":        c,
			"site_name":       defaultSiteName,
			"site_location":   defaultSiteLocation,
			"recipient_email": recipient,
			"unsubscribe_url": campaignBaseURL + "/unsubscribe?email=" + url.QueryEscape(recipient),
			"preferences_url": campaignBaseURL + "/preferences?email=" + url.QueryEscape(recipient),
			"timestamp":       time.Now().Format(timestampLayout),
		}

		if err := s.send(ctx, recipient, subject, "campaign.html", data, nil); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to send to %s", recipient))

			continue
		}

		result.Sent++
	}

	s.logger.Info("campaign finished",
		observability.Field{Key: "sent", Value: result.Sent},
		observability.Field{Key: "failed", Value: result.Failed},
	)

	return result, nil
}

// SendNotification delivers an operational notification (alerts,
// confirmations). Known kinds: security_alert, voucher_redeemed,
// loyalty_tier_upgrade, device_blocked.
func (s *Service) SendNotification(ctx context.Context, to, kind string, data map[string]any) error {
	subject, ok := notificationSubjects[kind]
	if !ok {
		return errors.Newf("unknown notification type: %s", kind)
	}

	payload := mergeMaps(data, map[string]any{
		"site_name":         defaultSiteName,
		"site_location":     defaultSiteLocation,
		"timestamp":         time.Now().Format(timestampLayout),
		"notification_type": kind,
	})

	return s.send(ctx, to, subject, "notification.html", payload, nil)
}

// TestDelivery sends a plain test message to verify the delivery path.
func (s *Service) TestDelivery(ctx context.Context, to string) error {
	data := map[string]any{
		"site_name":     defaultSiteName,
		"site_location": defaultSiteLocation,
		"test_time":     time.Now().Format(timestampLayout),
	}

	return s.send(ctx, to, "LSLT Portal - Email Service Test", "test.html", data, nil)
}

// HealthStatus is the email service health snapshot.
type HealthStatus struct {
	Status             string `json:"status"`
	Provider           string `json:"provider,omitempty"`
	SMTPHost           string `json:"smtp_host,omitempty"`
	SMTPPort           int    `json:"smtp_port,omitempty"`
	SMTPUser           string `json:"smtp_user,omitempty"`
	FromEmail          string `json:"from_email,omitempty"`
	TemplatesAvailable int    `json:"templates_available,omitempty"`
	Error              string `json:"error,omitempty"`
}

// HealthCheck reports delivery health. Providers that support Ping are
// probed live; the result never carries an error value, failures fold
// into the status.
func (s *Service) HealthCheck(ctx context.Context) *HealthStatus {
	if err := s.available(); err != nil {
		return &HealthStatus{
			Status: "unavailable",
			Error:  "email service is not configured",
		}
	}

	status := &HealthStatus{
		Status:             "healthy",
		Provider:           s.provider.Name(),
		FromEmail:          s.fromEmail,
		TemplatesAvailable: len(s.templates.Names()),
	}

	if sp, ok := s.provider.(*SMTPProvider); ok {
		status.SMTPHost = sp.cfg.Host
		status.SMTPPort = sp.cfg.Port
		status.SMTPUser = sp.cfg.Username
	}

	if pinger, ok := s.provider.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			status.Status = "error"
			status.Error = err.Error()
		}
	}

	return status
}

// Stats is the delivery tally since process start.
type Stats struct {
	EmailsSent   int        `json:"emails_sent"`
	EmailsFailed int        `json:"emails_failed"`
	SuccessRate  float64    `json:"success_rate"`
	LastSent     *time.Time `json:"last_sent"`
}

// Stats returns a point-in-time copy of the delivery counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{EmailsSent: s.sent, EmailsFailed: s.failed}

	if total := s.sent + s.failed; total > 0 {
		stats.SuccessRate = float64(s.sent) / float64(total) * 100
	}

	if !s.lastSent.IsZero() {
		last := s.lastSent
		stats.LastSent = &last
	}

	return stats
}

// Close releases the provider.
func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}

	return s.provider.Close()
}

func (s *Service) available() error {
	if s.provider == nil {
		return errors.WithStack(ErrUnavailable)
	}

	if s.provider.Validate() != nil {
		return errors.WithStack(ErrUnavailable)
	}

	return nil
}

// send renders and delivers one message, keeping the delivery counters.
func (s *Service) send(ctx context.Context, to, subject, templateName string, data map[string]any, attachments []Attachment) error {
	if err := s.available(); err != nil {
		return err
	}

	html, err := s.templates.Render(templateName, data)
	if err != nil {
		s.recordFailure()
		s.metrics.RecordError("email_render", "template")

		return err
	}

	msg := &Message{
		To:          []string{to},
		FromEmail:   s.fromEmail,
		FromName:    s.fromName,
		Subject:     subject,
		HTMLBody:    html,
		Attachments: attachments,
	}

	if err := s.provider.Send(ctx, msg); err != nil {
		s.recordFailure()
		s.metrics.RecordError("email_send", "delivery")
		s.logger.Error("failed to send email",
			observability.Field{Key: "to", Value: to},
			observability.Field{Key: "template", Value: templateName},
			observability.Field{Key: "error", Value: err.Error()},
		)

		return errors.Wrapf(err, "failed to send email to %s", to)
	}

	s.recordSuccess()
	s.logger.Info("email sent",
		observability.Field{Key: "to", Value: to},
		observability.Field{Key: "template", Value: templateName},
		observability.Field{Key: "provider", Value: s.provider.Name()},
	)

	return nil
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	s.sent++
	s.lastSent = time.Now()
	s.mu.Unlock()
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

// mergeMaps copies base then overlay; overlay keys win. Neither input is
// modified.
func mergeMaps(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}

	return out
}
