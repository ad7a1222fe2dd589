package gateway

import (
	"context"
	"net/http"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/response"
)

// Job kinds reported by the email queue.
const (
	jobKindSendEmail    = "send_email"
	jobKindSendVoucher  = "send_voucher"
	jobKindSendCampaign = "send_campaign"
)

// EmailHandler serves the /email endpoints. Send operations are queued
// and acknowledged immediately; the returned job id correlates the
// acknowledgement with the delivery logs.
type EmailHandler struct {
	email  EmailService
	queue  JobQueue
	logger observability.Logger
}

// NewEmailHandler creates the email handler group.
func NewEmailHandler(email EmailService, queue JobQueue, logger observability.Logger) *EmailHandler {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &EmailHandler{email: email, queue: queue, logger: logger}
}

// Send queues one templated email.
//
// POST /email/send
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "email sending", err)

		return
	}

	if !h.email.Templates().Has(req.TemplateName) {
		writeError(w, h.logger, "email sending", &response.RequestError{
			Message: "unknown email template: " + req.TemplateName,
		})

		return
	}

	jobID, err := h.queue.Enqueue(jobKindSendEmail, func(ctx context.Context) error {
		return h.email.SendTemplate(ctx, req.ToEmail, req.Subject, req.TemplateName, req.TemplateData, req.Attachments)
	})
	if err != nil {
		writeError(w, h.logger, "email sending", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Email queued for sending",
		"job_id":  jobID,
	})
}

// SendVoucher queues a voucher email to a customer.
//
// POST /email/send-voucher
func (h *EmailHandler) SendVoucher(w http.ResponseWriter, r *http.Request) {
	var req SendVoucherEmailRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "voucher email sending", err)

		return
	}

	jobID, err := h.queue.Enqueue(jobKindSendVoucher, func(ctx context.Context) error {
		return h.email.SendVoucher(ctx, req.CustomerEmail, req.VoucherData)
	})
	if err != nil {
		writeError(w, h.logger, "voucher email sending", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Voucher email queued for sending",
		"job_id":  jobID,
	})
}

// SendCampaign queues a campaign run. Per-recipient failures are
// tallied by the campaign job and surface only in logs and metrics.
//
// POST /email/send-campaign
func (h *EmailHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req SendCampaignRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "campaign sending", err)

		return
	}

	jobID, err := h.queue.Enqueue(jobKindSendCampaign, func(ctx context.Context) error {
		_, err := h.email.SendCampaign(ctx, req.CampaignData, req.RecipientList)

		return err
	})
	if err != nil {
		writeError(w, h.logger, "campaign sending", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Campaign emails queued for sending",
		"job_id":  jobID,
	})
}

// Test sends a synchronous test email so operators get the outcome in
// the reply instead of the logs.
//
// POST /email/test
func (h *EmailHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req TestEmailRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "email test", err)

		return
	}

	if err := h.email.TestDelivery(r.Context(), req.ToEmail); err != nil {
		writeError(w, h.logger, "email test", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Test email sent successfully",
	})
}

// Stats reports the delivery counters since process start.
//
// GET /email/stats
func (h *EmailHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.Fields{
		"stats": h.email.Stats(),
	})
}
