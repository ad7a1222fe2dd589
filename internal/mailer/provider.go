package mailer

import "context"

// Provider is a pluggable email transport.
type Provider interface {
	// Name identifies the provider in logs and health output.
	Name() string

	// Send delivers one message. It blocks until the provider has either
	// accepted or rejected the message.
	Send(ctx context.Context, msg *Message) error

	// Validate reports whether the provider has the configuration it
	// needs to deliver mail.
	Validate() error

	// Close releases any provider resources.
	Close() error
}

// Pinger is implemented by providers that can probe connectivity without
// sending mail. Health checks use it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}
