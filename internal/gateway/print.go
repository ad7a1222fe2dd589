package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/printer"
	"github.com/lslt/portal-services/internal/response"
)

// PrintHandler serves the /print endpoints.
type PrintHandler struct {
	printers PrintService
	logger   observability.Logger
}

// NewPrintHandler creates the print handler group.
func NewPrintHandler(printers PrintService, logger observability.Logger) *PrintHandler {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &PrintHandler{printers: printers, logger: logger}
}

// Receipt prints a redemption receipt.
//
// POST /print/receipt
func (h *PrintHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req PrintReceiptRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "receipt printing", err)

		return
	}

	jobID, err := h.printers.PrintReceipt(r.Context(), req.VoucherData, req.CustomerData, req.StaffData, req.SiteData)
	if err != nil {
		writeError(w, h.logger, "receipt printing", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Receipt printed successfully",
		"job_id":  jobID,
	})
}

// Voucher prints a voucher in the requested format.
//
// POST /print/voucher
func (h *PrintHandler) Voucher(w http.ResponseWriter, r *http.Request) {
	var req PrintVoucherRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "voucher printing", err)

		return
	}

	printType := req.PrintType
	if printType == "" {
		printType = printer.PrintTypeThermal
	}

	jobID, err := h.printers.PrintVoucher(r.Context(), req.VoucherData, printType)
	if err != nil {
		writeError(w, h.logger, "voucher printing", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Voucher printed successfully",
		"job_id":  jobID,
	})
}

// Report prints an A4 report. The body is the report payload itself,
// not a wrapper object.
//
// POST /print/report
func (h *PrintHandler) Report(w http.ResponseWriter, r *http.Request) {
	var report map[string]any
	if err := response.Decode(r, &report); err != nil {
		writeError(w, h.logger, "report printing", err)

		return
	}

	if len(report) == 0 {
		writeError(w, h.logger, "report printing", &response.RequestError{
			Message: "request body is required",
		})

		return
	}

	jobID, err := h.printers.PrintReport(r.Context(), report)
	if err != nil {
		writeError(w, h.logger, "report printing", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Report printed successfully",
		"job_id":  jobID,
	})
}

// Status reports every configured printer.
//
// GET /print/status
func (h *PrintHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.Fields{
		"printers": h.printers.Status(r.Context()),
	})
}

// Test sends a test page to the printer named in the path.
//
// POST /print/test/{printer_id}
func (h *PrintHandler) Test(w http.ResponseWriter, r *http.Request) {
	printerID := chi.URLParam(r, "printer_id")

	message, err := h.printers.TestPrint(r.Context(), printerID)
	if err != nil {
		writeError(w, h.logger, "printer test", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Test print completed",
		"result": response.Fields{
			"success": true,
			"message": message,
		},
	})
}
