package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GenerateLinkRequest struct {
	IsPublic  bool   `json:"is_public"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type ValidateLinkRequest struct {
	LinkID string `json:"link_id" binding:"required"`
}

type LinkHandler struct {
	store   *store.Store
	baseURL string
	logger  *zap.Logger
}

func NewLinkHandler(docStore *store.Store, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		store:   docStore,
		baseURL: baseURL,
		logger:  logger,
	}
}

// GenerateLink handles POST /forms/:id/links. Requires authentication; only
// the form's creator may generate links.
func (h *LinkHandler) GenerateLink(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.APIResponse{
			Success: false,
			Error:   "User must be authenticated",
			Message: "Unauthorized",
		})
		return
	}

	formID := c.Param("id")
	var req GenerateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Error:   "expires_at must be RFC3339",
				Message: "Invalid Request Body",
			})
			return
		}
		expiresAt = &parsed
	}

	ctx := c.Request.Context()
	form, err := h.store.GetForm(ctx, formID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Form not found",
				Message: "Not Found",
			})
			return
		}
		h.internalError(c, "failed to load form", err)
		return
	}
	if form.CreatedBy != userID {
		c.JSON(http.StatusForbidden, models.APIResponse{
			Success: false,
			Error:   "Access denied",
			Message: "Forbidden",
		})
		return
	}

	linkID := uuid.New().String()
	link := &models.FormLink{
		LinkID:    linkID,
		FormID:    formID,
		FormLink:  fmt.Sprintf("%s/form/%s", h.baseURL, linkID),
		IsPublic:  req.IsPublic,
		CreatedBy: userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := h.store.SaveFormLink(ctx, link); err != nil {
		h.internalError(c, "failed to store form link", err)
		return
	}

	form.ShareLink = link.FormLink
	form.LastUpdated = time.Now()
	if err := h.store.SaveForm(ctx, form); err != nil {
		h.internalError(c, "failed to update form share link", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Form link generated",
		Data: gin.H{
			"link_id":   linkID,
			"form_link": link.FormLink,
			"is_public": link.IsPublic,
		},
	})
}

// ValidateAccess handles POST /links/validate: active and unexpired links
// resolve to their form and count the access.
func (h *LinkHandler) ValidateAccess(c *gin.Context) {
	var req ValidateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Message: "Invalid Request Body",
		})
		return
	}

	ctx := c.Request.Context()
	link, err := h.store.GetFormLink(ctx, req.LinkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Form link not found",
				Message: "Not Found",
			})
			return
		}
		h.internalError(c, "failed to load form link", err)
		return
	}

	if !link.IsActive {
		c.JSON(http.StatusForbidden, models.APIResponse{
			Success: false,
			Error:   "Form link is inactive",
			Message: "Forbidden",
		})
		return
	}
	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		c.JSON(http.StatusForbidden, models.APIResponse{
			Success: false,
			Error:   "Form link has expired",
			Message: "Forbidden",
		})
		return
	}

	form, err := h.store.GetForm(ctx, link.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Form not found",
				Message: "Not Found",
			})
			return
		}
		h.internalError(c, "failed to load form", err)
		return
	}

	link, err = h.store.IncrementLinkAccess(ctx, link.LinkID)
	if err != nil {
		h.internalError(c, "failed to update access count", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Form link valid",
		Data: gin.H{
			"form": form,
			"link": link,
		},
	})
}

func (h *LinkHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Error:   msg,
		Message: "Internal Server Error",
	})
}
