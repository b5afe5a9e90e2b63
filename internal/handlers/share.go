package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShareFormRequest shares a form with one or more cohorts. The legacy
// single-cohort field is accepted and folded into the list.
type ShareFormRequest struct {
	FormID          string   `json:"form_id" binding:"required"`
	FormTitle       string   `json:"form_title" binding:"required"`
	FormDescription string   `json:"form_description,omitempty"`
	FormLink        string   `json:"form_link,omitempty"`
	CohortID        string   `json:"cohort_id,omitempty"`
	CohortIDs       []string `json:"cohort_ids,omitempty"`
}

type ShareFormResult struct {
	RecipientsCount  int      `json:"recipients_count"`
	SuccessCount     int      `json:"success_count"`
	FailureCount     int      `json:"failure_count"`
	ProcessedCohorts []string `json:"processed_cohorts"`
	TotalCohorts     int      `json:"total_cohorts"`
}

type ShareHandler struct {
	store      *store.Store
	dispatcher EmailDispatcher
	baseURL    string
	logger     *zap.Logger
}

func NewShareHandler(docStore *store.Store, dispatcher EmailDispatcher, baseURL string, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		store:      docStore,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// ShareWithCohorts handles POST /forms/share: one FormShared email per
// recipient across every requested cohort. Per-recipient failures are counted
// and audited by dispatch, not fatal to the batch.
func (h *ShareHandler) ShareWithCohorts(c *gin.Context) {
	correlationID := c.GetString("correlation_id")

	var req ShareFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}

	cohortIDs := req.CohortIDs
	if req.CohortID != "" {
		cohortIDs = append([]string{req.CohortID}, cohortIDs...)
	}
	if len(cohortIDs) == 0 {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "either cohort_id or cohort_ids must be provided",
			Message: "Validation failed",
		})
		return
	}

	shareLink := req.FormLink
	if shareLink == "" {
		shareLink = fmt.Sprintf("%s/form/%s", h.baseURL, req.FormID)
	}

	ctx := c.Request.Context()
	result := ShareFormResult{TotalCohorts: len(cohortIDs)}

	for _, cohortID := range cohortIDs {
		cohort, err := h.store.GetCohort(ctx, cohortID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.logger.Error("cohort not found",
					zap.String("cohort_id", cohortID),
					zap.String("correlation_id", correlationID),
				)
				result.FailureCount++
				continue
			}
			c.JSON(http.StatusInternalServerError, models.APIResponse{
				Success: false,
				Error:   "failed to load cohort",
				Message: "Internal Server Error",
			})
			return
		}

		if len(cohort.Recipients) == 0 {
			h.logger.Info("cohort has no recipients, skipping",
				zap.String("cohort_id", cohortID),
			)
			continue
		}

		result.RecipientsCount += len(cohort.Recipients)
		result.ProcessedCohorts = append(result.ProcessedCohorts, cohort.Name)

		for _, recipient := range cohort.Recipients {
			deliveryResult, err := h.dispatcher.Dispatch(ctx, models.NotificationRequest{
				To:   recipient.Email,
				Kind: models.KindFormShared,
				Payload: models.EmailPayload{
					FormTitle:       req.FormTitle,
					FormDescription: req.FormDescription,
					RecipientName:   recipient.Name,
					ShareLink:       shareLink,
				},
				CorrelationID: correlationID,
			})
			if err != nil || !deliveryResult.Success {
				result.FailureCount++
				continue
			}
			result.SuccessCount++
		}

		h.logger.Info("cohort processed",
			zap.String("cohort", cohort.Name),
			zap.Int("recipients", len(cohort.Recipients)),
		)
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Form shared with cohorts successfully",
		Data:    result,
	})
}
