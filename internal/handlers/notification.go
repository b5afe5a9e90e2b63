package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/formflow/backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmailDispatcher is the email subsystem boundary the HTTP layer calls into.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, req models.NotificationRequest) (models.DeliveryResult, error)
}

type NotificationHandler struct {
	dispatcher EmailDispatcher
	logger     *zap.Logger
}

func NewNotificationHandler(dispatcher EmailDispatcher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SendEmail handles POST /notifications/email. Handled outcomes, including
// delivery failures, respond 200 with a structured result; only malformed
// requests produce 400.
func (n *NotificationHandler) SendEmail(c *gin.Context) {
	correlationID := c.GetString("correlation_id")

	var req models.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}
	req.CorrelationID = correlationID

	result, err := n.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Error:   validationErr.Error(),
				Message: "Validation failed",
			})
			return
		}
		n.logger.Error("dispatch failed",
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "failed to process notification",
			Message: "Internal Server Error",
		})
		return
	}

	message := "Email sent successfully"
	switch {
	case result.Skipped:
		message = "Skipped sending email to form owner"
	case !result.Success:
		message = "Email delivery failed"
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: result.Success,
		Message: message,
		Data:    result,
	})
}
