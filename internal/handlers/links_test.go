package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupLinkRouter(t *testing.T, userID string) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)

	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	docStore := store.New(redis.NewClient(&redis.Options{Addr: s.Addr()}))

	handler := NewLinkHandler(docStore, "https://formflow.com", zap.NewNop())
	router := gin.New()
	// stands in for the auth middleware
	router.POST("/forms/:id/links", func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		handler.GenerateLink(c)
	})
	router.POST("/links/validate", handler.ValidateAccess)
	return router, docStore
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateLink_OwnerOnly(t *testing.T) {
	router, docStore := setupLinkRouter(t, "intruder")
	assert.NoError(t, docStore.SaveForm(context.Background(), &models.Form{
		ID:        "f1",
		Title:     "Survey A",
		CreatedBy: "user-1",
	}))

	w := postJSON(router, "/forms/f1/links", GenerateLinkRequest{IsPublic: true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenerateLink_StoresLinkAndUpdatesForm(t *testing.T) {
	router, docStore := setupLinkRouter(t, "user-1")
	ctx := context.Background()
	assert.NoError(t, docStore.SaveForm(ctx, &models.Form{
		ID:        "f1",
		Title:     "Survey A",
		CreatedBy: "user-1",
	}))

	w := postJSON(router, "/forms/f1/links", GenerateLinkRequest{IsPublic: true})
	assert.Equal(t, http.StatusOK, w.Code)

	var response models.APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)

	data := response.Data.(map[string]interface{})
	linkID := data["link_id"].(string)
	assert.NotEmpty(t, linkID)

	link, err := docStore.GetFormLink(ctx, linkID)
	assert.NoError(t, err)
	assert.True(t, link.IsActive)
	assert.True(t, link.IsPublic)

	form, err := docStore.GetForm(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, link.FormLink, form.ShareLink)
}

func TestValidateAccess_CountsAccess(t *testing.T) {
	router, docStore := setupLinkRouter(t, "user-1")
	ctx := context.Background()
	assert.NoError(t, docStore.SaveForm(ctx, &models.Form{ID: "f1", Title: "Survey A", CreatedBy: "user-1"}))
	assert.NoError(t, docStore.SaveFormLink(ctx, &models.FormLink{
		LinkID:   "l1",
		FormID:   "f1",
		FormLink: "https://formflow.com/form/l1",
		IsActive: true,
	}))

	w := postJSON(router, "/links/validate", ValidateLinkRequest{LinkID: "l1"})
	assert.Equal(t, http.StatusOK, w.Code)

	link, err := docStore.GetFormLink(ctx, "l1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), link.AccessCount)
}

func TestValidateAccess_RejectsInactiveAndExpired(t *testing.T) {
	router, docStore := setupLinkRouter(t, "user-1")
	ctx := context.Background()

	assert.NoError(t, docStore.SaveFormLink(ctx, &models.FormLink{
		LinkID:   "inactive",
		FormID:   "f1",
		IsActive: false,
	}))
	expired := time.Now().Add(-time.Hour)
	assert.NoError(t, docStore.SaveFormLink(ctx, &models.FormLink{
		LinkID:    "expired",
		FormID:    "f1",
		IsActive:  true,
		ExpiresAt: &expired,
	}))

	w := postJSON(router, "/links/validate", ValidateLinkRequest{LinkID: "inactive"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "/links/validate", ValidateLinkRequest{LinkID: "expired"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "/links/validate", ValidateLinkRequest{LinkID: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
