package gateway

import (
	"context"

	"github.com/lslt/portal-services/internal/mailer"
	"github.com/lslt/portal-services/internal/printer"
)

// PrintService defines the printer operations the gateway depends on.
// The interface exists so handlers can be tested without real hardware.
type PrintService interface {
	// PrintReceipt prints a redemption receipt and returns the job id.
	PrintReceipt(ctx context.Context, voucher, customer, staff, site map[string]any) (string, error)

	// PrintVoucher prints a voucher in the requested format.
	PrintVoucher(ctx context.Context, voucher map[string]any, printType string) (string, error)

	// PrintReport prints an A4 report through CUPS.
	PrintReport(ctx context.Context, report map[string]any) (string, error)

	// Status probes every configured printer.
	Status(ctx context.Context) map[string]printer.PrinterStatus

	// TestPrint sends a test page to one printer and reports how it went.
	TestPrint(ctx context.Context, printerID string) (string, error)

	// HealthCheck summarises the configured fleet.
	HealthCheck(ctx context.Context) *printer.HealthStatus
}

// EmailService defines the delivery operations the gateway depends on.
type EmailService interface {
	// Templates exposes the template engine so handlers can reject
	// unknown template names before queueing work.
	Templates() *mailer.TemplateEngine

	// SendTemplate delivers one templated email.
	SendTemplate(ctx context.Context, to, subject, templateName string, data map[string]any, attachments []mailer.Attachment) error

	// SendVoucher emails a voucher to a customer.
	SendVoucher(ctx context.Context, to string, voucher map[string]any) error

	// SendCampaign delivers a campaign to every recipient.
	SendCampaign(ctx context.Context, campaign map[string]any, recipients []string) (*mailer.CampaignResult, error)

	// TestDelivery sends a plain test message.
	TestDelivery(ctx context.Context, to string) error

	// HealthCheck reports delivery health.
	HealthCheck(ctx context.Context) *mailer.HealthStatus

	// Stats returns the delivery counters.
	Stats() mailer.Stats
}

// JobQueue accepts background email jobs.
type JobQueue interface {
	// Enqueue schedules a job and returns its id without waiting for
	// execution.
	Enqueue(kind string, run mailer.JobFunc) (string, error)
}

// Compile-time checks that the concrete services satisfy the handler
// interfaces.
var (
	_ PrintService = (*printer.Service)(nil)
	_ EmailService = (*mailer.Service)(nil)
	_ JobQueue     = (*mailer.Queue)(nil)
)
