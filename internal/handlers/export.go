package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formflow/backend/internal/export"
	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExportFilters struct {
	Status   string `json:"status,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

type ExportRequest struct {
	FormID  string        `json:"form_id" binding:"required"`
	Format  string        `json:"format,omitempty"`
	Filters ExportFilters `json:"filters"`
}

type ExportHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewExportHandler(docStore *store.Store, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		store:  docStore,
		logger: logger,
	}
}

// Export handles POST /forms/export: CSV attachment by default, the raw
// documents for format=json.
func (h *ExportHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	filter, err := parseFilters(req.Filters)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}

	ctx := c.Request.Context()
	form, err := h.store.GetForm(ctx, req.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Form not found",
				Message: "Not Found",
			})
			return
		}
		h.logger.Error("failed to load form", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "failed to export submissions",
			Message: "Internal Server Error",
		})
		return
	}

	submissions, err := h.store.ListSubmissions(ctx, req.FormID, filter)
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "failed to export submissions",
			Message: "Internal Server Error",
		})
		return
	}

	if req.Format == "csv" {
		csvData := export.BuildCSV(form, submissions)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", form.Title+"_submissions.csv"))
		c.Data(http.StatusOK, "text/csv", []byte(csvData))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form":        form,
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func parseFilters(filters ExportFilters) (store.SubmissionFilter, error) {
	out := store.SubmissionFilter{Status: filters.Status}
	if filters.DateFrom != "" {
		from, err := time.Parse(time.RFC3339, filters.DateFrom)
		if err != nil {
			return out, fmt.Errorf("date_from must be RFC3339: %w", err)
		}
		out.DateFrom = &from
	}
	if filters.DateTo != "" {
		to, err := time.Parse(time.RFC3339, filters.DateTo)
		if err != nil {
			return out, fmt.Errorf("date_to must be RFC3339: %w", err)
		}
		out.DateTo = &to
	}
	return out, nil
}
