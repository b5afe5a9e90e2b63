package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/formflow/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupStore(t *testing.T) *Store {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	return New(redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	}))
}

func TestFormRoundTrip(t *testing.T) {
	docStore := setupStore(t)
	ctx := context.Background()

	form := &models.Form{
		ID:                 "f1",
		Title:              "Survey A",
		CreatedBy:          "user-1",
		OwnerEmail:         "owner@x.com",
		EmailNotifications: true,
		Fields:             []models.FormField{{ID: "q1", Label: "Q1"}},
	}
	assert.NoError(t, docStore.SaveForm(ctx, form))

	loaded, err := docStore.GetForm(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, form, loaded)
}

func TestGetForm_NotFound(t *testing.T) {
	docStore := setupStore(t)

	_, err := docStore.GetForm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSubmissions_FiltersAndOrder(t *testing.T) {
	docStore := setupStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	submissions := []models.Submission{
		{ID: "s1", FormID: "f1", Status: "approved", CreatedAt: base},
		{ID: "s2", FormID: "f1", Status: "pending", CreatedAt: base.Add(24 * time.Hour)},
		{ID: "s3", FormID: "f1", Status: "approved", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "s4", FormID: "other", Status: "approved", CreatedAt: base},
	}
	for i := range submissions {
		assert.NoError(t, docStore.SaveSubmission(ctx, &submissions[i]))
	}

	all, err := docStore.ListSubmissions(ctx, "f1", SubmissionFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "s1", all[0].ID)
	assert.Equal(t, "s3", all[2].ID)

	approved, err := docStore.ListSubmissions(ctx, "f1", SubmissionFilter{Status: "approved"})
	assert.NoError(t, err)
	assert.Len(t, approved, 2)

	from := base.Add(12 * time.Hour)
	recent, err := docStore.ListSubmissions(ctx, "f1", SubmissionFilter{DateFrom: &from})
	assert.NoError(t, err)
	assert.Len(t, recent, 2)

	to := base.Add(12 * time.Hour)
	early, err := docStore.ListSubmissions(ctx, "f1", SubmissionFilter{DateTo: &to})
	assert.NoError(t, err)
	assert.Len(t, early, 1)
	assert.Equal(t, "s1", early[0].ID)
}

func TestSaveSubmission_UpdateDoesNotDuplicateIndex(t *testing.T) {
	docStore := setupStore(t)
	ctx := context.Background()

	submission := &models.Submission{ID: "s1", FormID: "f1", Status: "pending"}
	assert.NoError(t, docStore.SaveSubmission(ctx, submission))

	submission.Status = "approved"
	assert.NoError(t, docStore.SaveSubmission(ctx, submission))

	all, err := docStore.ListSubmissions(ctx, "f1", SubmissionFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "approved", all[0].Status)
}

func TestIncrementLinkAccess(t *testing.T) {
	docStore := setupStore(t)
	ctx := context.Background()

	link := &models.FormLink{
		LinkID:    "l1",
		FormID:    "f1",
		FormLink:  "https://formflow.com/form/l1",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, docStore.SaveFormLink(ctx, link))

	updated, err := docStore.IncrementLinkAccess(ctx, "l1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), updated.AccessCount)
	assert.False(t, updated.LastAccessed.IsZero())

	updated, err = docStore.IncrementLinkAccess(ctx, "l1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), updated.AccessCount)
}

func TestAddNotification_AssignsIDAndIndexes(t *testing.T) {
	docStore := setupStore(t)
	ctx := context.Background()

	notification := &models.Notification{
		UserID:  "user-1",
		Type:    "new_submission",
		Title:   "New Form Submission",
		Message: `You have a new submission for "Survey A"`,
	}
	assert.NoError(t, docStore.AddNotification(ctx, notification))
	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.CreatedAt.IsZero())
}
