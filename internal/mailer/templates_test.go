package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lslt/portal-services/internal/mailer"
)

func newEngine(t *testing.T) *mailer.TemplateEngine {
	t.Helper()

	engine, err := mailer.NewTemplateEngine()
	require.NoError(t, err)

	return engine
}

func TestTemplateEngineNames(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	assert.Equal(t, []string{
		"campaign.html",
		"notification.html",
		"test.html",
		"voucher.html",
		"welcome.html",
	}, engine.Names())
}

func TestTemplateEngineHas(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	assert.True(t, engine.Has("voucher"))
	assert.True(t, engine.Has("voucher.html"))
	assert.False(t, engine.Has("ransom-note"))
}

func TestRenderVoucher(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("voucher", map[string]any{
		"site_name":     "LSLT Portal",
		"site_location": "Main Location",
		"voucher": map[string]any{
			"title":       "Free Coffee",
			"code":        "WIFI-2024-ABC",
			"type":        "reward",
			"value":       12.5,
			"description": "One free coffee of your choice",
			"qr_code":     "data:image/png;base64,aGVsbG8=",
			"expires_at":  "2026-09-30T23:59:59Z",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Free Coffee")
	assert.Contains(t, html, "WIFI-2024-ABC")
	assert.Contains(t, html, "$12.50")
	assert.Contains(t, html, "2026-09-30")
	assert.Contains(t, html, "Reward")
	assert.Contains(t, html, "One free coffee of your choice")
	assert.Contains(t, html, `src="data:image/png;base64,aGVsbG8="`)
	assert.Contains(t, html, "Thank you for visiting LSLT Portal!")
}

func TestRenderVoucherOmitsOptionalSections(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("voucher", map[string]any{
		"site_name":     "LSLT Portal",
		"site_location": "Main Location",
		"voucher": map[string]any{
			"title":      "Free WiFi",
			"code":       "WIFI-1",
			"type":       "wifi",
			"expires_at": "2026-01-01",
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "Description:")
	assert.NotContains(t, html, "Value:")
	assert.NotContains(t, html, "<img")
}

func TestRenderVoucherEscapesValues(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("voucher", map[string]any{
		"site_name":     "LSLT Portal",
		"site_location": "Main Location",
		"voucher": map[string]any{
			"title":      "<script>alert(1)</script>",
			"code":       "X",
			"type":       "t",
			"expires_at": "2026-01-01",
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderCampaign(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("campaign", map[string]any{
		"site_name":       "LSLT Portal",
		"site_location":   "Main Location",
		"unsubscribe_url": "https://portal.lslt.local/unsubscribe?email=a%40b.c",
		"preferences_url": "https://portal.lslt.local/preferences?email=a%40b.c",
		"campaign": map[string]any{
			"subject":  "Summer Sale",
			"content":  "<p>Up to <b>50%</b> off!</p>",
			"cta_text": "Shop Now",
			"cta_url":  "https://portal.lslt.local/offers",
		},
	})
	require.NoError(t, err)

	// Campaign content is operator HTML and must pass through unescaped.
	assert.Contains(t, html, "<p>Up to <b>50%</b> off!</p>")
	assert.Contains(t, html, "Summer Sale")
	assert.Contains(t, html, `class="cta-button"`)
	assert.Contains(t, html, "Shop Now")
	assert.Contains(t, html, "unsubscribe?email=a%40b.c")
}

func TestRenderCampaignWithoutCTA(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("campaign", map[string]any{
		"site_name":       "LSLT Portal",
		"site_location":   "Main Location",
		"unsubscribe_url": "#",
		"preferences_url": "#",
		"campaign": map[string]any{
			"subject": "Plain Update",
			"content": "<p>Nothing to click.</p>",
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, `class="cta-button"`)
}

func TestRenderWelcome(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("welcome", map[string]any{
		"site_name":     "LSLT Portal",
		"site_location": "Main Location",
		"customer": map[string]any{
			"name":           "Alice",
			"loyalty_tier":   "Gold",
			"visit_count":    7,
			"loyalty_points": 230,
			"vouchers_count": 2,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Welcome, Alice!")
	assert.Contains(t, html, "Gold Member")
	assert.Contains(t, html, ">7<")
	assert.Contains(t, html, ">230<")
	assert.Contains(t, html, ">2<")
}

func TestRenderNotification(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("notification", map[string]any{
		"site_name":         "LSLT Portal",
		"site_location":     "Main Location",
		"timestamp":         "2026-08-23 10:00:00",
		"notification_type": "security_alert",
		"message":           "A device was blocked on your network.",
		"details": map[string]any{
			"mac_address": "aa:bb:cc:dd:ee:ff",
			"reason":      "Security policy violation",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Security Alert")
	assert.Contains(t, html, "A device was blocked on your network.")
	assert.Contains(t, html, "Mac Address")
	assert.Contains(t, html, "aa:bb:cc:dd:ee:ff")
	assert.Contains(t, html, "Security policy violation")
}

func TestRenderTestTemplate(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	html, err := engine.Render("test", map[string]any{
		"site_name":     "LSLT Portal",
		"site_location": "Main Location",
		"test_time":     "2026-08-23 10:00:00",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "LSLT Portal Email Test")
	assert.Contains(t, html, "2026-08-23 10:00:00")
	assert.Contains(t, html, "the email service is working correctly")
}

func TestRenderUnknownTemplate(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	_, err := engine.Render("pwn", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown email template")
}
