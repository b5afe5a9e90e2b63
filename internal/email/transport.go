package email

import "context"

// Message is a fully-prepared email handed to a transport for delivery.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// TransportKind identifies the active delivery mechanism.
type TransportKind string

const (
	TransportGmail   TransportKind = "gmail"
	TransportResend  TransportKind = "resend"
	TransportConsole TransportKind = "console"
)

// Transport is the interface every delivery backend implements. Exactly one
// transport is active per process; there is no runtime failover between them.
type Transport interface {
	Kind() TransportKind
	// Verify checks the transport is usable without sending anything.
	Verify(ctx context.Context) error
	// Send delivers the message and returns the provider's message ID.
	Send(ctx context.Context, msg Message) (string, error)
}
