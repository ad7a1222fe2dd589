package gateway

import (
	"github.com/lslt/portal-services/internal/mailer"
)

// Request bodies for the gateway endpoints. Field names are the wire
// names the portal frontend already sends; voucher, customer, staff,
// and site payloads stay open maps because their shape is owned by the
// upstream application.

// PrintReceiptRequest asks for a redemption receipt on the thermal
// printer.
type PrintReceiptRequest struct {
	VoucherData  map[string]any `json:"voucher_data"  validate:"required"`
	CustomerData map[string]any `json:"customer_data"`
	StaffData    map[string]any `json:"staff_data"    validate:"required"`
	SiteData     map[string]any `json:"site_data"     validate:"required"`
}

// PrintVoucherRequest asks for a voucher print. An empty PrintType
// defaults to thermal.
type PrintVoucherRequest struct {
	VoucherData map[string]any `json:"voucher_data" validate:"required"`
	PrintType   string         `json:"print_type"   validate:"omitempty,oneof=thermal label a4"`
}

// BlockDeviceRequest names the device to block. DurationHours is
// accepted on the wire but not applied; block rules do not expire.
type BlockDeviceRequest struct {
	MACAddress    string `json:"mac_address" validate:"required"`
	Reason        string `json:"reason"      validate:"required"`
	DurationHours int    `json:"duration_hours,omitempty"`
}

// UnblockDeviceRequest names the device to unblock.
type UnblockDeviceRequest struct {
	MACAddress string `json:"mac_address" validate:"required"`
}

// AuthorizeDeviceRequest grants guest access. A missing DurationHours
// defaults to 24.
type AuthorizeDeviceRequest struct {
	MACAddress    string `json:"mac_address"    validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"omitempty,min=1"`
}

// SendEmailRequest queues one templated email.
type SendEmailRequest struct {
	ToEmail      string              `json:"to_email"      validate:"required,email"`
	Subject      string              `json:"subject"       validate:"required"`
	TemplateName string              `json:"template_name" validate:"required"`
	TemplateData map[string]any      `json:"template_data" validate:"required"`
	Attachments  []mailer.Attachment `json:"attachments"   validate:"omitempty,dive"`
}

// SendVoucherEmailRequest queues a voucher email to one customer.
type SendVoucherEmailRequest struct {
	CustomerEmail string         `json:"customer_email" validate:"required,email"`
	VoucherData   map[string]any `json:"voucher_data"   validate:"required"`
}

// SendCampaignRequest queues a campaign run across a recipient list.
type SendCampaignRequest struct {
	CampaignData  map[string]any `json:"campaign_data"  validate:"required"`
	RecipientList []string       `json:"recipient_list" validate:"required,min=1,dive,email"`
}

// TestEmailRequest asks for a synchronous delivery test.
type TestEmailRequest struct {
	ToEmail string `json:"to_email" validate:"required,email"`
}
