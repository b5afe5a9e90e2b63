package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/formflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is the document store for forms, cohorts, links, submissions and
// in-app notifications. Documents are JSON values under typed key prefixes.
type Store struct {
	redis *redis.Client
}

func New(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func formKey(id string) string       { return "form:" + id }
func cohortKey(id string) string     { return "cohort:" + id }
func linkKey(id string) string       { return "formlink:" + id }
func submissionKey(id string) string { return "submission:" + id }

func formSubmissionsKey(formID string) string { return "form:" + formID + ":submissions" }

func (s *Store) get(ctx context.Context, key string, out interface{}) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetForm(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := s.get(ctx, formKey(id), &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *Store) SaveForm(ctx context.Context, form *models.Form) error {
	return s.set(ctx, formKey(form.ID), form)
}

func (s *Store) GetCohort(ctx context.Context, id string) (*models.Cohort, error) {
	var cohort models.Cohort
	if err := s.get(ctx, cohortKey(id), &cohort); err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (s *Store) SaveCohort(ctx context.Context, cohort *models.Cohort) error {
	return s.set(ctx, cohortKey(cohort.ID), cohort)
}

func (s *Store) GetFormLink(ctx context.Context, linkID string) (*models.FormLink, error) {
	var link models.FormLink
	if err := s.get(ctx, linkKey(linkID), &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *Store) SaveFormLink(ctx context.Context, link *models.FormLink) error {
	return s.set(ctx, linkKey(link.LinkID), link)
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.get(ctx, submissionKey(id), &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// SaveSubmission writes the submission and keeps the per-form index current.
func (s *Store) SaveSubmission(ctx context.Context, submission *models.Submission) error {
	if err := s.set(ctx, submissionKey(submission.ID), submission); err != nil {
		return err
	}
	// The seen set guards against re-indexing on status updates; the list
	// keeps submissions in insertion order for exports.
	added, err := s.redis.SAdd(ctx, formSubmissionsKey(submission.FormID)+":seen", submission.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to index submission: %w", err)
	}
	if added > 0 {
		if err := s.redis.RPush(ctx, formSubmissionsKey(submission.FormID), submission.ID).Err(); err != nil {
			return fmt.Errorf("failed to index submission: %w", err)
		}
	}
	return nil
}

// SubmissionFilter narrows an export query.
type SubmissionFilter struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ListSubmissions returns the form's submissions matching the filter, in
// insertion order.
func (s *Store) ListSubmissions(ctx context.Context, formID string, filter SubmissionFilter) ([]models.Submission, error) {
	ids, err := s.redis.LRange(ctx, formSubmissionsKey(formID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for form %s: %w", formID, err)
	}

	submissions := make([]models.Submission, 0, len(ids))
	for _, id := range ids {
		var submission models.Submission
		if err := s.get(ctx, submissionKey(id), &submission); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if filter.Status != "" && submission.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && submission.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && submission.CreatedAt.After(*filter.DateTo) {
			continue
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// AddNotification writes an in-app notification document for a user.
func (s *Store) AddNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	key := "notification:" + notification.ID
	if err := s.set(ctx, key, notification); err != nil {
		return err
	}
	if err := s.redis.LPush(ctx, "user:"+notification.UserID+":notifications", notification.ID).Err(); err != nil {
		return fmt.Errorf("failed to index notification: %w", err)
	}
	return nil
}

// IncrementLinkAccess bumps the access counter and stamps the access time.
func (s *Store) IncrementLinkAccess(ctx context.Context, linkID string) (*models.FormLink, error) {
	link, err := s.GetFormLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	link.AccessCount++
	link.LastAccessed = time.Now()
	if err := s.SaveFormLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}
