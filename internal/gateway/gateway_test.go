package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lslt/portal-services/internal/gateway"
	"github.com/lslt/portal-services/internal/mailer"
	"github.com/lslt/portal-services/internal/printer"
	"github.com/lslt/portal-services/internal/unifi"
)

// stubController implements unifi.ControllerClient with canned results,
// recording the arguments handlers pass through.
type stubController struct {
	err       error
	health    *unifi.HealthStatus
	gotMAC    string
	gotReason string
	gotHours  int
}

func (c *stubController) BlockDevice(_ context.Context, mac, reason string) (*unifi.BlockResult, error) {
	c.gotMAC, c.gotReason = mac, reason

	if c.err != nil {
		return nil, c.err
	}

	return &unifi.BlockResult{
		Blocked:        true,
		MACAddress:     mac,
		Reason:         reason,
		FirewallRuleID: "rule-1",
		Timestamp:      time.Now(),
	}, nil
}

func (c *stubController) UnblockDevice(_ context.Context, mac string) (*unifi.UnblockResult, error) {
	c.gotMAC = mac

	if c.err != nil {
		return nil, c.err
	}

	return &unifi.UnblockResult{
		Unblocked:    true,
		MACAddress:   mac,
		DeletedRules: []string{"rule-1"},
		Timestamp:    time.Now(),
	}, nil
}

func (c *stubController) AuthorizeDevice(_ context.Context, mac string, durationHours int) (*unifi.AuthorizeResult, error) {
	c.gotMAC, c.gotHours = mac, durationHours

	if c.err != nil {
		return nil, c.err
	}

	return &unifi.AuthorizeResult{
		Authorized:    true,
		MACAddress:    mac,
		DurationHours: durationHours,
		ExpiresAt:     time.Now().Add(time.Duration(durationHours) * time.Hour),
		Timestamp:     time.Now(),
	}, nil
}

func (c *stubController) GetDeviceStatus(_ context.Context, mac string) (*unifi.DeviceStatus, error) {
	c.gotMAC = mac

	if c.err != nil {
		return nil, c.err
	}

	return &unifi.DeviceStatus{
		Found:      true,
		MACAddress: mac,
		IsOnline:   true,
		IPAddress:  "192.168.1.50",
		Hostname:   "guest-phone",
		Timestamp:  time.Now(),
	}, nil
}

func (c *stubController) ListBlockedDevices(_ context.Context) ([]unifi.BlockedDevice, error) {
	if c.err != nil {
		return nil, c.err
	}

	return []unifi.BlockedDevice{
		{MACAddress: "aa:bb:cc:dd:ee:ff", RuleID: "rule-1", RuleName: "Block_aa_bb_cc_dd_ee_ff", Enabled: true},
	}, nil
}

func (c *stubController) GetNetworkStats(_ context.Context) (*unifi.NetworkStats, error) {
	if c.err != nil {
		return nil, c.err
	}

	return &unifi.NetworkStats{
		ActiveClients:        12,
		GuestClients:         5,
		AuthenticatedClients: 4,
		Timestamp:            time.Now(),
	}, nil
}

func (c *stubController) GetSiteInfo(_ context.Context) (*unifi.SiteInfo, error) {
	if c.err != nil {
		return nil, c.err
	}

	return &unifi.SiteInfo{Name: "default"}, nil
}

func (c *stubController) HealthCheck(_ context.Context) *unifi.HealthStatus {
	if c.health != nil {
		return c.health
	}

	return &unifi.HealthStatus{
		Status:        "healthy",
		ControllerURL: "https://192.168.1.1",
		Site:          "default",
	}
}

func (c *stubController) Logout(_ context.Context) error {
	return nil
}

// stubPrinters implements gateway.PrintService.
type stubPrinters struct {
	err         error
	testMessage string

	gotVoucher   map[string]any
	gotCustomer  map[string]any
	gotStaff     map[string]any
	gotSite      map[string]any
	gotReport    map[string]any
	gotType      string
	gotPrinterID string
}

func (p *stubPrinters) PrintReceipt(_ context.Context, voucher, customer, staff, site map[string]any) (string, error) {
	p.gotVoucher, p.gotCustomer, p.gotStaff, p.gotSite = voucher, customer, staff, site

	if p.err != nil {
		return "", p.err
	}

	return "receipt_20260823_143000", nil
}

func (p *stubPrinters) PrintVoucher(_ context.Context, voucher map[string]any, printType string) (string, error) {
	p.gotVoucher, p.gotType = voucher, printType

	if p.err != nil {
		return "", p.err
	}

	return "voucher_" + printType + "_20260823_143000", nil
}

func (p *stubPrinters) PrintReport(_ context.Context, report map[string]any) (string, error) {
	p.gotReport = report

	if p.err != nil {
		return "", p.err
	}

	return "report_20260823_143000", nil
}

func (p *stubPrinters) Status(_ context.Context) map[string]printer.PrinterStatus {
	return map[string]printer.PrinterStatus{
		"thermal_receipt": {Type: "thermal", Status: "online", LastCheck: "2026-08-23T14:30:00"},
	}
}

func (p *stubPrinters) TestPrint(_ context.Context, printerID string) (string, error) {
	p.gotPrinterID = printerID

	if p.err != nil {
		return "", p.err
	}

	if p.testMessage != "" {
		return p.testMessage, nil
	}

	return "Test print completed", nil
}

func (p *stubPrinters) HealthCheck(_ context.Context) *printer.HealthStatus {
	return &printer.HealthStatus{Initialized: true, ThermalPrinters: 1, CUPSAvailable: true}
}

// stubEmail implements gateway.EmailService over a real template engine
// so template-name validation behaves as in production.
type stubEmail struct {
	engine *mailer.TemplateEngine
	err    error
	stats  mailer.Stats

	sentTo       string
	sentSubject  string
	sentTemplate string
	sentData     map[string]any
	sentFiles    []mailer.Attachment

	voucherTo   string
	voucherData map[string]any

	campaignData map[string]any
	recipients   []string

	testedTo string
}

func (e *stubEmail) Templates() *mailer.TemplateEngine {
	return e.engine
}

func (e *stubEmail) SendTemplate(_ context.Context, to, subject, templateName string, data map[string]any, attachments []mailer.Attachment) error {
	e.sentTo, e.sentSubject, e.sentTemplate, e.sentData, e.sentFiles = to, subject, templateName, data, attachments

	return e.err
}

func (e *stubEmail) SendVoucher(_ context.Context, to string, voucher map[string]any) error {
	e.voucherTo, e.voucherData = to, voucher

	return e.err
}

func (e *stubEmail) SendCampaign(_ context.Context, campaign map[string]any, recipients []string) (*mailer.CampaignResult, error) {
	e.campaignData, e.recipients = campaign, recipients

	if e.err != nil {
		return nil, e.err
	}

	return &mailer.CampaignResult{Sent: len(recipients)}, nil
}

func (e *stubEmail) TestDelivery(_ context.Context, to string) error {
	e.testedTo = to

	return e.err
}

func (e *stubEmail) HealthCheck(_ context.Context) *mailer.HealthStatus {
	return &mailer.HealthStatus{
		Status:             "healthy",
		Provider:           "smtp",
		FromEmail:          "noreply@lslt.local",
		TemplatesAvailable: 5,
	}
}

func (e *stubEmail) Stats() mailer.Stats {
	return e.stats
}

// stubQueue records enqueued jobs without running them; tests invoke
// the captured JobFunc to observe what the job would do.
type stubQueue struct {
	err   error
	kinds []string
	jobs  []mailer.JobFunc
}

func (q *stubQueue) Enqueue(kind string, run mailer.JobFunc) (string, error) {
	if q.err != nil {
		return "", q.err
	}

	q.kinds = append(q.kinds, kind)
	q.jobs = append(q.jobs, run)

	return fmt.Sprintf("job-%d", len(q.jobs)), nil
}

// testGateway bundles a router with the stubs behind it.
type testGateway struct {
	handler    http.Handler
	controller *stubController
	printers   *stubPrinters
	email      *stubEmail
	queue      *stubQueue
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	engine, err := mailer.NewTemplateEngine()
	require.NoError(t, err)

	g := &testGateway{
		controller: &stubController{},
		printers:   &stubPrinters{},
		email:      &stubEmail{engine: engine},
		queue:      &stubQueue{},
	}

	srv := gateway.NewServer(gateway.Config{
		ListenAddr:  "127.0.0.1:0",
		CORSOrigins: []string{"http://localhost:3000"},
		Controller:  g.controller,
		Printers:    g.printers,
		Email:       g.email,
		Queue:       g.queue,
	})

	g.handler = srv.Handler()

	return g
}

// doJSON performs a request against the router and decodes the JSON
// reply.
func (g *testGateway) doJSON(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	rec := g.do(t, method, path, body, nil)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))

	return rec.Code, decoded
}

func (g *testGateway) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)

	return rec
}

// field digs a nested value out of a decoded reply.
func field(t *testing.T, body map[string]any, keys ...string) any {
	t.Helper()

	var current any = body
	for _, key := range keys {
		m, ok := current.(map[string]any)
		require.True(t, ok, "expected object at %q", key)

		current, ok = m[key]
		require.True(t, ok, "missing key %q", key)
	}

	return current
}
