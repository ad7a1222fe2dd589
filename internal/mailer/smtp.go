package mailer

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
)

const defaultSMTPTimeout = 30 * time.Second

// SMTPConfig configures the SMTP provider.
type SMTPConfig struct {
	// Host is the SMTP relay hostname.
	Host string

	// Port is the SMTP relay port, typically 587 for STARTTLS or 465 for
	// implicit TLS.
	Port int

	// Username and Password authenticate with AUTH PLAIN.
	Username string
	Password string

	// UseTLS upgrades a plain connection with STARTTLS.
	UseTLS bool

	// UseSSL connects with implicit TLS. Takes precedence over UseTLS.
	UseSSL bool

	// Timeout bounds the whole SMTP session. Defaults to 30 seconds.
	Timeout time.Duration

	// Logger for send lifecycle events. Defaults to a no-op logger.
	Logger observability.Logger
}

// SMTPProvider delivers mail over a classic SMTP session.
type SMTPProvider struct {
	cfg    SMTPConfig
	logger observability.Logger
}

// NewSMTPProvider creates an SMTP provider. The configuration is not
// verified here; Validate reports missing credentials.
func NewSMTPProvider(cfg SMTPConfig) *SMTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &SMTPProvider{cfg: cfg, logger: logger}
}

// Name returns "smtp".
func (p *SMTPProvider) Name() string {
	return "smtp"
}

// Validate reports whether the relay credentials are present.
func (p *SMTPProvider) Validate() error {
	if p.cfg.Host == "" || p.cfg.Username == "" || p.cfg.Password == "" {
		return errors.New("smtp host, username and password are required")
	}

	return nil
}

// Send delivers one message over a fresh SMTP session.
func (p *SMTPProvider) Send(ctx context.Context, msg *Message) error {
	body, err := buildMIME(msg, time.Now())
	if err != nil {
		return err
	}

	client, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(msg.FromEmail); err != nil {
		return errors.Wrap(err, "smtp MAIL FROM rejected")
	}

	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.Wrapf(err, "smtp RCPT TO rejected for %s", rcpt)
		}
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA rejected")
	}

	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "failed to write message body")
	}

	if err := w.Close(); err != nil {
		return errors.Wrap(err, "smtp message rejected")
	}

	if err := client.Quit(); err != nil {
		return errors.Wrap(err, "smtp QUIT failed")
	}

	p.logger.Debug("smtp message delivered",
		observability.Field{Key: "to", Value: msg.To},
		observability.Field{Key: "subject", Value: msg.Subject},
	)

	return nil
}

// Ping opens a session, authenticates, and quits without sending mail.
func (p *SMTPProvider) Ping(ctx context.Context) error {
	client, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return errors.Wrap(client.Quit(), "smtp QUIT failed")
}

// Close releases nothing; sessions are per-send.
func (p *SMTPProvider) Close() error {
	return nil
}

// connect dials the relay, negotiates TLS per configuration, and
// authenticates. The session deadline covers everything up to QUIT.
func (p *SMTPProvider) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))

	dialer := &net.Dialer{Timeout: p.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to smtp server %s", addr)
	}

	deadline := time.Now().Add(p.cfg.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if p.cfg.UseSSL {
		conn = tls.Client(conn, &tls.Config{ServerName: p.cfg.Host})
	}

	client, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "smtp handshake failed")
	}

	if !p.cfg.UseSSL && p.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: p.cfg.Host}); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "smtp STARTTLS failed")
		}
	}

	if p.cfg.Username != "" {
		auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "smtp authentication failed")
		}
	}

	return client, nil
}
