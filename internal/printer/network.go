package printer

import (
	"context"
	"net"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
)

const defaultDialTimeout = 10 * time.Second

// NetworkDriver sends ESC/POS payloads to a printer's raw TCP port,
// usually 9100. Each job opens its own connection.
type NetworkDriver struct {
	addr    string
	timeout time.Duration
	logger  observability.Logger
}

// NewNetworkDriver creates a driver for one network printer.
func NewNetworkDriver(addr string, timeout time.Duration, logger observability.Logger) *NetworkDriver {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &NetworkDriver{addr: addr, timeout: timeout, logger: logger}
}

// Addr returns the printer address.
func (d *NetworkDriver) Addr() string { return d.addr }

// Print writes one payload to the printer and closes the connection.
func (d *NetworkDriver) Print(ctx context.Context, payload []byte) error {
	conn, err := d.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write(payload); err != nil {
		return errors.Wrapf(err, "failed to write to printer at %s", d.addr)
	}

	d.logger.Debug("escpos payload sent",
		observability.Field{Key: "printer", Value: d.addr},
		observability.Field{Key: "bytes", Value: len(payload)},
	)

	return nil
}

// Ping checks that the printer port accepts connections.
func (d *NetworkDriver) Ping(ctx context.Context) error {
	conn, err := d.dial(ctx)
	if err != nil {
		return err
	}

	return errors.Wrap(conn.Close(), "failed to close printer connection")
}

func (d *NetworkDriver) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: d.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to printer at %s", d.addr)
	}

	deadline := time.Now().Add(d.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to set printer deadline")
	}

	return conn, nil
}
