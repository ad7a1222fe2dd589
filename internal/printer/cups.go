package printer

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
)

// commandRunner executes one external command, feeding it stdin and
// returning combined output. Tests substitute it.
type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s", name, strings.TrimSpace(string(out)))
	}

	return out, nil
}

// QueuePrinter describes one printer known to the CUPS scheduler.
type QueuePrinter struct {
	Name         string
	Online       bool
	StateMessage string
}

// CUPSDriver submits documents to the CUPS scheduler through lp and
// reads printer state through lpstat.
type CUPSDriver struct {
	printerName string
	duplex      bool
	run         commandRunner
	logger      observability.Logger
}

// NewCUPSDriver creates a driver that prints to the named queue by
// default.
func NewCUPSDriver(printerName string, duplex bool, logger observability.Logger) *CUPSDriver {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &CUPSDriver{
		printerName: printerName,
		duplex:      duplex,
		run:         execCommand,
		logger:      logger,
	}
}

// PrinterName returns the default queue name.
func (d *CUPSDriver) PrinterName() string { return d.printerName }

// PrintDocument submits a document to a queue. An empty printer name
// uses the driver's default queue.
func (d *CUPSDriver) PrintDocument(ctx context.Context, printer, title string, doc []byte) error {
	if printer == "" {
		printer = d.printerName
	}

	args := []string{"-d", printer, "-t", title}
	if d.duplex {
		args = append(args, "-o", "sides=two-sided-long-edge")
	}

	out, err := d.run(ctx, doc, "lp", args...)
	if err != nil {
		return errors.Wrapf(err, "failed to print to %s", printer)
	}

	d.logger.Debug("document queued",
		observability.Field{Key: "printer", Value: printer},
		observability.Field{Key: "title", Value: title},
		observability.Field{Key: "lp_output", Value: strings.TrimSpace(string(out))},
	)

	return nil
}

// Printers lists the queues known to the scheduler with their state.
func (d *CUPSDriver) Printers(ctx context.Context) ([]QueuePrinter, error) {
	out, err := d.run(ctx, nil, "lpstat", "-p")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query cups printers")
	}

	return parseLpstat(string(out)), nil
}

// parseLpstat reads "lpstat -p" output. Each printer line has the form
// "printer <name> <state>".
func parseLpstat(out string) []QueuePrinter {
	var printers []QueuePrinter

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 || fields[0] != "printer" {
			continue
		}

		printers = append(printers, QueuePrinter{
			Name:         fields[1],
			Online:       strings.Contains(line, "is idle") || strings.Contains(line, "now printing"),
			StateMessage: strings.Join(fields[2:], " "),
		})
	}

	return printers
}
