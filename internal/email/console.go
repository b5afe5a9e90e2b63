package email

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConsoleTransport logs messages instead of sending them. It is resolved only
// in local/emulator mode when no real provider is configured, so local flows
// complete without credentials.
type ConsoleTransport struct {
	logger *zap.Logger
}

func NewConsoleTransport(logger *zap.Logger) *ConsoleTransport {
	return &ConsoleTransport{logger: logger}
}

func (t *ConsoleTransport) Kind() TransportKind {
	return TransportConsole
}

func (t *ConsoleTransport) Verify(ctx context.Context) error {
	return nil
}

func (t *ConsoleTransport) Send(ctx context.Context, msg Message) (string, error) {
	id := "local-" + uuid.New().String()
	t.logger.Info("console transport: email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", id),
	)
	return id, nil
}
