package mailer_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lslt/portal-services/internal/mailer"
)

// fakeProvider records delivered messages and can fail selected recipients.
type fakeProvider struct {
	mu          sync.Mutex
	sent        []*mailer.Message
	failFor     map[string]error
	validateErr error
	closed      bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(_ context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, to := range msg.To {
		if err, ok := f.failFor[to]; ok {
			return err
		}
	}

	f.sent = append(f.sent, msg)

	return nil
}

func (f *fakeProvider) Validate() error { return f.validateErr }

func (f *fakeProvider) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

func (f *fakeProvider) messages() []*mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*mailer.Message, len(f.sent))
	copy(out, f.sent)

	return out
}

func newService(t *testing.T, provider mailer.Provider) *mailer.Service {
	t.Helper()

	svc, err := mailer.NewService(mailer.ServiceConfig{
		Provider:              provider,
		FromEmail:             "noreply@lslt.local",
		FromName:              "LSLT WiFi Portal",
		CampaignRatePerSecond: 1000,
	})
	require.NoError(t, err)

	return svc
}

func TestSendVoucher(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	voucher := map[string]any{
		"code":       "WIFI-2024-ABC",
		"title":      "Free Coffee",
		"type":       "reward",
		"value":      12.5,
		"expires_at": "2026-09-30T18:00:00",
	}

	require.NoError(t, svc.SendVoucher(context.Background(), "alice@example.com", voucher))

	msgs := provider.messages()
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, []string{"alice@example.com"}, msg.To)
	assert.Equal(t, "Your Free Coffee - WIFI-2024-ABC", msg.Subject)
	assert.Equal(t, "noreply@lslt.local", msg.FromEmail)
	assert.Equal(t, "LSLT WiFi Portal", msg.FromName)
	assert.Contains(t, msg.HTMLBody, "WIFI-2024-ABC")
	assert.Contains(t, msg.HTMLBody, "$12.50")
}

func TestSendVoucherDefaultTitle(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	require.NoError(t, svc.SendVoucher(context.Background(), "alice@example.com", map[string]any{"code": "X1"}))

	msgs := provider.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Your Voucher - X1", msgs[0].Subject)
}

func TestSendWelcome(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	customer := map[string]any{
		"email":          "dana@example.com",
		"name":           "Dana",
		"loyalty_tier":   "gold",
		"visit_count":    7,
		"loyalty_points": 230,
	}

	require.NoError(t, svc.SendWelcome(context.Background(), customer))

	msgs := provider.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"dana@example.com"}, msgs[0].To)
	assert.Equal(t, "Welcome to LSLT Portal, Dana!", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTMLBody, "Dana")
}

func TestSendWelcomeRequiresEmail(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeProvider{})

	err := svc.SendWelcome(context.Background(), map[string]any{"name": "Dana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer email is required")
}

func TestSendCampaign(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		failFor: map[string]error{"bob@example.com": errors.New("mailbox full")},
	}
	svc := newService(t, provider)

	campaign := map[string]any{
		"subject": "Flash Sale",
		"title":   "Flash Sale",
		"content": "<p>Half price coffee today.</p>",
	}
	recipients := []string{"alice@example.com", "bob@example.com", "carol@example.com"}

	result, err := svc.SendCampaign(context.Background(), campaign, recipients)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"Failed to send to bob@example.com"}, result.Errors)

	msgs := provider.messages()
	require.Len(t, msgs, 2)

	for _, msg := range msgs {
		assert.Equal(t, "Flash Sale", msg.Subject)

		recipient := msg.To[0]
		escaped := strings.ReplaceAll(recipient, "@", "%40")
		assert.Contains(t, msg.HTMLBody, "/unsubscribe?email="+escaped)
		assert.Contains(t, msg.HTMLBody, "/preferences?email="+escaped)
	}
}

func TestSendCampaignDefaultSubject(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	campaign := map[string]any{"content": "<p>News.</p>"}

	result, err := svc.SendCampaign(context.Background(), campaign, []string{"alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	msgs := provider.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Special Offer", msgs[0].Subject)
}

func TestSendCampaignAbortsOnCancel(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.SendCampaign(ctx, map[string]any{}, []string{"alice@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "campaign aborted")
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Sent)
}

func TestSendNotification(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	data := map[string]any{
		"message": "Device aa:bb:cc:dd:ee:ff exceeded its quota.",
		"details": map[string]any{"mac_address": "aa:bb:cc:dd:ee:ff"},
	}

	require.NoError(t, svc.SendNotification(context.Background(), "admin@example.com", "security_alert", data))

	msgs := provider.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Security Alert - LSLT Portal", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTMLBody, "exceeded its quota")
}

func TestSendNotificationUnknownKind(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeProvider{})

	err := svc.SendNotification(context.Background(), "admin@example.com", "mystery", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown notification type: mystery")
}

func TestTestDelivery(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)

	require.NoError(t, svc.TestDelivery(context.Background(), "ops@example.com"))

	msgs := provider.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "LSLT Portal - Email Service Test", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTMLBody, "email service is working correctly")
}

func TestServiceUnconfigured(t *testing.T) {
	t.Parallel()

	svc := newService(t, nil)

	assert.False(t, svc.Configured())

	err := svc.SendVoucher(context.Background(), "alice@example.com", map[string]any{"code": "X"})
	assert.ErrorIs(t, err, mailer.ErrUnavailable)

	health := svc.HealthCheck(context.Background())
	assert.Equal(t, "unavailable", health.Status)
	assert.Equal(t, "email service is not configured", health.Error)
}

func TestServiceProviderMisconfigured(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{validateErr: errors.New("missing credentials")}
	svc := newService(t, provider)

	assert.False(t, svc.Configured())

	err := svc.TestDelivery(context.Background(), "ops@example.com")
	assert.ErrorIs(t, err, mailer.ErrUnavailable)
}

func TestHealthCheckHealthy(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeProvider{})

	health := svc.HealthCheck(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "fake", health.Provider)
	assert.Equal(t, "noreply@lslt.local", health.FromEmail)
	assert.Equal(t, 5, health.TemplatesAvailable)
	assert.Empty(t, health.Error)
}

func TestHealthCheckProbesSMTP(t *testing.T) {
	t.Parallel()

	provider := mailer.NewSMTPProvider(mailer.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Username: "portal@example.com",
		Password: "secret",
	})
	svc := newService(t, provider)

	health := svc.HealthCheck(context.Background())
	assert.Equal(t, "error", health.Status)
	assert.Equal(t, "127.0.0.1", health.SMTPHost)
	assert.Equal(t, 1, health.SMTPPort)
	assert.Equal(t, "portal@example.com", health.SMTPUser)
	assert.NotEmpty(t, health.Error)
}

func TestStats(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		failFor: map[string]error{"bob@example.com": errors.New("mailbox full")},
	}
	svc := newService(t, provider)

	stats := svc.Stats()
	assert.Equal(t, 0, stats.EmailsSent)
	assert.Equal(t, 0, stats.EmailsFailed)
	assert.Zero(t, stats.SuccessRate)
	assert.Nil(t, stats.LastSent)

	ctx := context.Background()
	require.NoError(t, svc.TestDelivery(ctx, "alice@example.com"))
	require.NoError(t, svc.TestDelivery(ctx, "carol@example.com"))
	require.Error(t, svc.TestDelivery(ctx, "bob@example.com"))

	stats = svc.Stats()
	assert.Equal(t, 2, stats.EmailsSent)
	assert.Equal(t, 1, stats.EmailsFailed)
	assert.InDelta(t, 200.0/3.0, stats.SuccessRate, 0.001)
	require.NotNil(t, stats.LastSent)
	assert.False(t, stats.LastSent.IsZero())
}

func TestServiceClose(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newService(t, provider)
	require.NoError(t, svc.Close())

	provider.mu.Lock()
	closed := provider.closed
	provider.mu.Unlock()
	assert.True(t, closed)

	unconfigured := newService(t, nil)
	assert.NoError(t, unconfigured.Close())
}
