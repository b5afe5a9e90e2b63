package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/formflow/backend/internal/email"
	"github.com/formflow/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender delivers a prepared message; all transport failures come back as
// data in the DeliveryResult.
type Sender interface {
	Kind() email.TransportKind
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg email.Message) models.DeliveryResult
}

// SenderSource resolves the active sender and from-address. Resolution is
// cached by the underlying resolver, so calling it per dispatch is cheap.
type SenderSource interface {
	Sender() (Sender, string, error)
}

// Renderer turns a notification kind and payload into subject and HTML.
type Renderer interface {
	Render(kind models.NotificationKind, payload models.EmailPayload) (models.RenderedEmail, error)
}

// Auditor appends one record per send attempt.
type Auditor interface {
	Append(ctx context.Context, record models.EmailLog) error
}

// Dispatcher is the single entry point for sending a notification email:
// suppression policy, payload validation, rendering, delivery and audit
// logging in one at-most-once pipeline.
type Dispatcher struct {
	source   SenderSource
	renderer Renderer
	audit    Auditor
	logger   *zap.Logger
}

func New(source SenderSource, renderer Renderer, auditor Auditor, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		source:   source,
		renderer: renderer,
		audit:    auditor,
		logger:   logger,
	}
}

// Dispatch runs one end-to-end delivery attempt. A non-nil error is a client
// contract violation (validation) and means no side effect happened; delivery
// failures come back inside the DeliveryResult with a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.NotificationRequest) (models.DeliveryResult, error) {
	// Safety: never send an approve/reject email to the form owner about
	// their own decision. A skip is not a send attempt, so nothing is
	// rendered, sent or audited.
	if req.Suppressed() {
		d.logger.Info("suppressed self-notification to form owner",
			zap.String("to", req.To),
			zap.String("correlation_id", req.CorrelationID),
		)
		return models.DeliveryResult{Success: true, Skipped: true}, nil
	}

	if req.Kind == models.KindTest {
		return d.dispatchTest(ctx), nil
	}

	if err := req.Validate(); err != nil {
		return models.DeliveryResult{}, err
	}

	rendered, err := d.renderer.Render(req.Kind, req.Payload)
	if err != nil {
		return models.DeliveryResult{}, err
	}

	sender, from, err := d.source.Sender()
	if err != nil {
		result := models.DeliveryResult{
			Success:     false,
			ErrorDetail: err.Error(),
		}
		d.appendAudit(ctx, req, rendered.Subject, result)
		return result, nil
	}

	result := sender.Send(ctx, email.Message{
		To:      req.To,
		From:    from,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	})

	d.appendAudit(ctx, req, rendered.Subject, result)
	return result, nil
}

// dispatchTest verifies the active transport without sending or auditing.
func (d *Dispatcher) dispatchTest(ctx context.Context) models.DeliveryResult {
	sender, _, err := d.source.Sender()
	if err != nil {
		return models.DeliveryResult{Success: false, ErrorDetail: err.Error()}
	}
	if err := sender.Verify(ctx); err != nil {
		return models.DeliveryResult{
			Success:     false,
			ErrorDetail: fmt.Sprintf("email transporter verification failed: %v", err),
			Provider:    string(sender.Kind()),
		}
	}
	return models.DeliveryResult{
		Success:   true,
		MessageID: "test-message-id",
		Provider:  string(sender.Kind()),
	}
}

// appendAudit records the attempt regardless of outcome. An audit failure is
// reported to the operational log and swallowed so the caller's view of the
// delivery stays accurate.
func (d *Dispatcher) appendAudit(ctx context.Context, req models.NotificationRequest, subject string, result models.DeliveryResult) {
	record := models.EmailLog{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		To:        req.To,
		Subject:   subject,
		SentAt:    time.Now(),
		Success:   result.Success,
		MessageID: result.MessageID,
		Error:     result.ErrorDetail,
		Provider:  result.Provider,
	}
	if err := d.audit.Append(ctx, record); err != nil {
		d.logger.Error("failed to append email log",
			zap.String("to", req.To),
			zap.String("type", string(req.Kind)),
			zap.Error(err),
		)
	}
}
