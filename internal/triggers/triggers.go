package triggers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/internal/store"
	"go.uber.org/zap"
)

// EmailDispatcher is the email subsystem as the trigger handlers see it.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, req models.NotificationRequest) (models.DeliveryResult, error)
}

// Handler reacts to submission document lifecycle events: stamping metadata,
// writing in-app notifications and dispatching the owner/submitter emails.
type Handler struct {
	store      *store.Store
	dispatcher EmailDispatcher
	logger     *zap.Logger
}

func NewHandler(docStore *store.Store, dispatcher EmailDispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		store:      docStore,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleCreatedMessage is the queue-facing entry for submission.created.
func (h *Handler) HandleCreatedMessage(ctx context.Context, body []byte) error {
	var event models.SubmissionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("failed to decode submission created event", zap.Error(err))
		return err
	}
	if err := h.OnSubmissionCreated(ctx, event); err != nil {
		h.logger.Error("error processing form submission",
			zap.String("submission_id", event.SubmissionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// HandleUpdatedMessage is the queue-facing entry for submission.updated.
func (h *Handler) HandleUpdatedMessage(ctx context.Context, body []byte) error {
	var event models.SubmissionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("failed to decode submission updated event", zap.Error(err))
		return err
	}
	if err := h.OnSubmissionUpdated(ctx, event); err != nil {
		h.logger.Error("error processing form approval",
			zap.String("submission_id", event.SubmissionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// OnSubmissionCreated stamps the new submission, notifies the form owner
// in-app and emails them when the form has notifications enabled.
func (h *Handler) OnSubmissionCreated(ctx context.Context, event models.SubmissionEvent) error {
	submission := event.After
	if submission == nil {
		return errors.New("created event missing submission document")
	}
	if submission.ID == "" {
		submission.ID = event.SubmissionID
	}

	submission.Status = "pending"
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}
	if err := h.store.SaveSubmission(ctx, submission); err != nil {
		return fmt.Errorf("failed to stamp submission: %w", err)
	}

	form, err := h.store.GetForm(ctx, submission.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Error("form not found", zap.String("form_id", submission.FormID))
			return nil
		}
		return err
	}

	if err := h.store.AddNotification(ctx, &models.Notification{
		UserID:       form.CreatedBy,
		Type:         string(models.KindNewSubmission),
		Title:        "New Form Submission",
		Message:      fmt.Sprintf("You have a new submission for %q", form.Title),
		SubmissionID: submission.ID,
		FormID:       submission.FormID,
	}); err != nil {
		h.logger.Error("failed to write owner notification", zap.Error(err))
	}

	if !form.EmailNotifications || form.OwnerEmail == "" {
		h.logger.Info("form submission processed", zap.String("submission_id", submission.ID))
		return nil
	}

	result, err := h.dispatcher.Dispatch(ctx, models.NotificationRequest{
		To:   form.OwnerEmail,
		Kind: models.KindNewSubmission,
		Payload: models.EmailPayload{
			FormTitle:      form.Title,
			SubmitterName:  submission.SubmitterName,
			SubmitterEmail: submission.SubmitterEmail,
			SubmissionData: submission.Data,
		},
		CorrelationID: event.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch submission email: %w", err)
	}
	h.logger.Info("form submission processed",
		zap.String("submission_id", submission.ID),
		zap.Bool("email_sent", result.Success),
	)
	return nil
}

// OnSubmissionUpdated proceeds only on a status change, stamps the decision
// metadata and emails the submitter. Owner self-notification is suppressed by
// the dispatcher.
func (h *Handler) OnSubmissionUpdated(ctx context.Context, event models.SubmissionEvent) error {
	before, after := event.Before, event.After
	if after == nil {
		return errors.New("updated event missing submission document")
	}
	if before != nil && before.Status == after.Status {
		return nil
	}
	if after.ID == "" {
		after.ID = event.SubmissionID
	}

	after.UpdatedAt = time.Now()
	if after.Status == "approved" || after.Status == "rejected" {
		now := time.Now()
		after.ApprovedAt = &now
	} else {
		after.ApprovedAt = nil
	}
	if err := h.store.SaveSubmission(ctx, after); err != nil {
		return fmt.Errorf("failed to stamp decision metadata: %w", err)
	}

	form, err := h.store.GetForm(ctx, after.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Error("form not found", zap.String("form_id", after.FormID))
			return nil
		}
		return err
	}

	if after.SubmitterEmail != "" {
		decision := "Rejected"
		if after.Status == "approved" {
			decision = "Approved"
		}
		if err := h.store.AddNotification(ctx, &models.Notification{
			UserID:       after.SubmitterID,
			Type:         string(models.KindSubmissionDecision),
			Title:        fmt.Sprintf("Submission %s", decision),
			Message:      fmt.Sprintf("Your submission for %q has been %s.", form.Title, after.Status),
			SubmissionID: after.ID,
			FormID:       after.FormID,
			Status:       after.Status,
		}); err != nil {
			h.logger.Error("failed to write submitter notification", zap.Error(err))
		}
	}

	if !form.EmailNotifications || after.SubmitterEmail == "" {
		return nil
	}

	result, err := h.dispatcher.Dispatch(ctx, models.NotificationRequest{
		To:   after.SubmitterEmail,
		Kind: models.KindSubmissionDecision,
		Payload: models.EmailPayload{
			FormTitle:     form.Title,
			Status:        after.Status,
			Comments:      after.Comments,
			SubmitterName: after.SubmitterName,
		},
		FormOwnerEmail: form.OwnerEmail,
		CorrelationID:  event.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch decision email: %w", err)
	}
	h.logger.Info("form approval processed",
		zap.String("submission_id", after.ID),
		zap.Bool("email_sent", result.Success),
		zap.Bool("email_skipped", result.Skipped),
	)
	return nil
}
