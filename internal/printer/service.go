package printer

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
)

// Well-known printer ids.
const (
	ReceiptPrinterID = "thermal_receipt"
	LabelPrinterID   = "label_printer"
	ReportPrinterID  = "a4_reports"
)

// Print types accepted by PrintVoucher.
const (
	PrintTypeThermal = "thermal"
	PrintTypeLabel   = "label"
	PrintTypeA4      = "a4"
)

// ServiceConfig configures the printing service.
type ServiceConfig struct {
	// ReceiptAddr is the thermal receipt printer's host:port. Empty
	// disables receipt printing.
	ReceiptAddr string

	// ReceiptWidth is the receipt line width in characters. Defaults
	// to 48.
	ReceiptWidth int

	// LabelAddr is the label printer's host:port. Empty disables label
	// printing.
	LabelAddr string

	// CUPSPrinter is the default CUPS queue for A4 output. Empty
	// disables document printing.
	CUPSPrinter string

	// DialTimeout bounds printer connections. Defaults to 10s.
	DialTimeout time.Duration

	// Receipt, Label, and Documents override the drivers built from
	// the fields above. Tests use these.
	Receipt   ReceiptPrinter
	Label     ReceiptPrinter
	Documents DocumentPrinter

	// Logger for print job events. Defaults to a no-op logger.
	Logger observability.Logger

	// Metrics receives job metrics. Defaults to no-op.
	Metrics observability.MetricsRecorder
}

// Service runs the portal's print operations across the configured
// printer fleet.
type Service struct {
	receipt   ReceiptPrinter
	label     ReceiptPrinter
	documents DocumentPrinter
	width     int
	logger    observability.Logger
	metrics   observability.MetricsRecorder
}

// PrinterStatus is one printer's live state.
type PrinterStatus struct {
	Type         string `json:"type"`
	Status       string `json:"status"`
	StateMessage string `json:"state_message,omitempty"`
	LastCheck    string `json:"last_check"`
}

// HealthStatus summarises the printer fleet for health endpoints.
type HealthStatus struct {
	Initialized     bool `json:"initialized"`
	ThermalPrinters int  `json:"thermal_printers"`
	CUPSAvailable   bool `json:"cups_available"`
	LabelPrinters   int  `json:"label_printers"`
}

// NewService creates the printing service. Printer classes without
// configuration are left unconfigured and reject jobs.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	width := cfg.ReceiptWidth
	if width <= 0 {
		width = defaultReceiptWidth
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	receipt := cfg.Receipt
	if receipt == nil && cfg.ReceiptAddr != "" {
		receipt = NewNetworkDriver(cfg.ReceiptAddr, timeout, logger)
	}

	label := cfg.Label
	if label == nil && cfg.LabelAddr != "" {
		label = NewNetworkDriver(cfg.LabelAddr, timeout, logger)
	}

	documents := cfg.Documents
	if documents == nil && cfg.CUPSPrinter != "" {
		documents = NewCUPSDriver(cfg.CUPSPrinter, true, logger)
	}

	return &Service{
		receipt:   receipt,
		label:     label,
		documents: documents,
		width:     width,
		logger:    logger,
		metrics:   metrics,
	}
}

// PrintReceipt prints a redemption receipt and returns the job id.
func (s *Service) PrintReceipt(ctx context.Context, voucher, customer, staff, site map[string]any) (string, error) {
	return s.instrument("receipt", func() (string, error) {
		if s.receipt == nil {
			return "", errors.Wrap(ErrPrinterUnavailable, "thermal receipt printer")
		}

		payload, err := buildReceipt(s.width, voucher, customer, staff, site, time.Now())
		if err != nil {
			return "", err
		}

		if err := s.receipt.Print(ctx, payload); err != nil {
			return "", err
		}

		return jobID("receipt"), nil
	})
}

// PrintVoucher prints a voucher on the requested printer class:
// thermal, label, or a4.
func (s *Service) PrintVoucher(ctx context.Context, voucher map[string]any, printType string) (string, error) {
	switch printType {
	case PrintTypeThermal:
		return s.instrument("voucher_thermal", func() (string, error) {
			if s.receipt == nil {
				return "", errors.Wrap(ErrPrinterUnavailable, "thermal printer")
			}

			payload, err := buildVoucherThermal(s.width, voucher)
			if err != nil {
				return "", err
			}

			if err := s.receipt.Print(ctx, payload); err != nil {
				return "", err
			}

			return jobID("voucher_thermal"), nil
		})

	case PrintTypeLabel:
		return s.instrument("voucher_label", func() (string, error) {
			if s.label == nil {
				return "", errors.Wrap(ErrPrinterUnavailable, "label printer")
			}

			payload, err := buildVoucherLabel(voucher)
			if err != nil {
				return "", err
			}

			if err := s.label.Print(ctx, payload); err != nil {
				return "", err
			}

			return jobID("voucher_label"), nil
		})

	case PrintTypeA4:
		return s.instrument("voucher_a4", func() (string, error) {
			if s.documents == nil {
				return "", errors.Wrap(ErrPrinterUnavailable, "a4 printer")
			}

			title := "Voucher " + toString(voucher["code"])
			doc := renderVoucherDocument(voucher, time.Now())

			if err := s.documents.PrintDocument(ctx, "", title, doc); err != nil {
				return "", err
			}

			return jobID("voucher_a4"), nil
		})

	default:
		return "", errors.Newf("unsupported print type: %s", printType)
	}
}

// PrintReport prints a report on the A4 printer and returns the job
// id.
func (s *Service) PrintReport(ctx context.Context, report map[string]any) (string, error) {
	return s.instrument("report", func() (string, error) {
		if s.documents == nil {
			return "", errors.Wrap(ErrPrinterUnavailable, "cups printer")
		}

		title := toString(report["title"])
		if title == "" {
			title = "LSLT Portal Report"
		}

		doc := renderReportDocument(report, time.Now())

		if err := s.documents.PrintDocument(ctx, "", title, doc); err != nil {
			return "", err
		}

		return jobID("report"), nil
	})
}

// Status reports the live state of every configured printer. CUPS
// queues appear under their scheduler names.
func (s *Service) Status(ctx context.Context) map[string]PrinterStatus {
	status := make(map[string]PrinterStatus)
	lastCheck := time.Now().Format(isoTimestampLayout)

	if s.receipt != nil {
		status[ReceiptPrinterID] = pingStatus(ctx, s.receipt, "thermal", lastCheck)
	}

	if s.label != nil {
		status[LabelPrinterID] = pingStatus(ctx, s.label, "label", lastCheck)
	}

	if s.documents != nil {
		printers, err := s.documents.Printers(ctx)
		if err != nil {
			s.logger.Error("failed to get cups printer status",
				observability.Field{Key: "error", Value: err.Error()},
			)
		}

		for _, p := range printers {
			state := "offline"
			if p.Online {
				state = "online"
			}

			status[p.Name] = PrinterStatus{
				Type:         "cups",
				Status:       state,
				StateMessage: p.StateMessage,
				LastCheck:    lastCheck,
			}
		}
	}

	return status
}

// TestPrint sends a diagnostic page to one printer and returns the
// confirmation message.
func (s *Service) TestPrint(ctx context.Context, printerID string) (string, error) {
	start := time.Now()

	msg, err := s.testPrint(ctx, printerID)
	s.metrics.RecordJob("printer", "test", err == nil, time.Since(start))

	if err != nil {
		s.logger.Error("printer test failed",
			observability.Field{Key: "printer_id", Value: printerID},
			observability.Field{Key: "error", Value: err.Error()},
		)

		return "", err
	}

	s.logger.Info("printer test finished",
		observability.Field{Key: "printer_id", Value: printerID},
	)

	return msg, nil
}

func (s *Service) testPrint(ctx context.Context, printerID string) (string, error) {
	now := time.Now()

	switch printerID {
	case ReceiptPrinterID:
		if s.receipt == nil {
			break
		}

		if err := s.receipt.Print(ctx, buildTestPage(s.width, printerID, now)); err != nil {
			return "", err
		}

		return "Test print completed", nil

	case LabelPrinterID:
		if s.label == nil {
			break
		}

		if err := s.label.Print(ctx, buildTestPage(labelWidth, printerID, now)); err != nil {
			return "", err
		}

		return "Test print completed", nil
	}

	if s.documents != nil {
		printers, err := s.documents.Printers(ctx)
		if err != nil {
			return "", err
		}

		for _, p := range printers {
			if p.Name != printerID {
				continue
			}

			if err := s.documents.PrintDocument(ctx, printerID, "Test Print", renderTestDocument(printerID, now)); err != nil {
				return "", err
			}

			return "Test print sent to queue", nil
		}
	}

	return "", errors.Wrapf(ErrUnknownPrinter, "printer %s", printerID)
}

// HealthCheck reports which printer classes are configured.
func (s *Service) HealthCheck(_ context.Context) *HealthStatus {
	health := &HealthStatus{
		Initialized:   true,
		CUPSAvailable: s.documents != nil,
	}

	if s.receipt != nil {
		health.ThermalPrinters = 1
	}

	if s.label != nil {
		health.LabelPrinters = 1
	}

	return health
}

// instrument wraps one print operation with metrics and logging.
func (s *Service) instrument(kind string, fn func() (string, error)) (string, error) {
	start := time.Now()

	id, err := fn()
	s.metrics.RecordJob("printer", kind, err == nil, time.Since(start))

	if err != nil {
		s.logger.Error("print job failed",
			observability.Field{Key: "kind", Value: kind},
			observability.Field{Key: "error", Value: err.Error()},
		)

		return "", err
	}

	s.logger.Info("print job finished",
		observability.Field{Key: "kind", Value: kind},
		observability.Field{Key: "job_id", Value: id},
	)

	return id, nil
}

func pingStatus(ctx context.Context, driver ReceiptPrinter, printerType, lastCheck string) PrinterStatus {
	state := "online"
	if err := driver.Ping(ctx); err != nil {
		state = "offline"
	}

	return PrinterStatus{Type: printerType, Status: state, LastCheck: lastCheck}
}

func jobID(prefix string) string {
	return prefix + "_" + time.Now().Format(jobIDLayout)
}
