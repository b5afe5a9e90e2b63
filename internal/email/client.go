package email

import (
	"context"
	"fmt"
	"time"

	"github.com/formflow/backend/internal/models"
	"go.uber.org/zap"
)

// Client wraps the active transport and normalizes every send into a
// DeliveryResult. Transport errors are data to the caller, never panics or
// propagated errors.
type Client struct {
	transport Transport
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(transport Transport, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		transport: transport,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *Client) Kind() TransportKind {
	return c.transport.Kind()
}

// Verify checks the transport connection without sending.
func (c *Client) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.transport.Verify(ctx)
}

// Send verifies the transport first and fails fast if verification fails; the
// send is only attempted against a live connection.
func (c *Client) Send(ctx context.Context, msg Message) models.DeliveryResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	provider := string(c.transport.Kind())

	if err := c.transport.Verify(ctx); err != nil {
		c.logger.Error("email transport verification failed",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return models.DeliveryResult{
			Success:     false,
			ErrorDetail: fmt.Sprintf("email service not available: %v", err),
			Provider:    provider,
		}
	}

	messageID, err := c.transport.Send(ctx, msg)
	if err != nil {
		c.logger.Error("email send failed",
			zap.String("provider", provider),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return models.DeliveryResult{
			Success:     false,
			ErrorDetail: err.Error(),
			Provider:    provider,
		}
	}

	return models.DeliveryResult{
		Success:   true,
		MessageID: messageID,
		Provider:  provider,
	}
}
