package models

import "time"

// FormField describes one field of a form's structure; labels become CSV
// export column headers.
type FormField struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Form struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description,omitempty"`
	CreatedBy          string      `json:"created_by"`
	Fields             []FormField `json:"fields,omitempty"`
	EmailNotifications bool        `json:"email_notifications"`
	OwnerEmail         string      `json:"owner_email,omitempty"`
	ShareLink          string      `json:"share_link,omitempty"`
	LastUpdated        time.Time   `json:"last_updated,omitempty"`
}

// FormLink is a shareable access link to a form.
type FormLink struct {
	LinkID          string     `json:"link_id"`
	FormID          string     `json:"form_id"`
	FormLink        string     `json:"form_link"`
	IsPublic        bool       `json:"is_public"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	AccessCount     int64      `json:"access_count"`
	SubmissionCount int64      `json:"submission_count"`
	LastAccessed    time.Time  `json:"last_accessed,omitempty"`
}

type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Cohort is a named group of recipients a form can be bulk-shared with.
type Cohort struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Recipients []Recipient `json:"recipients"`
}

type Submission struct {
	ID             string         `json:"id"`
	FormID         string         `json:"form_id"`
	SubmitterID    string         `json:"submitter_id,omitempty"`
	SubmitterName  string         `json:"submitter_name,omitempty"`
	SubmitterEmail string         `json:"submitter_email,omitempty"`
	Status         string         `json:"status"`
	Comments       string         `json:"comments,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at,omitempty"`
	ApprovedBy     string         `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
}

// Notification is the in-app notification document written for form owners
// and submitters alongside the email.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	SubmissionID string    `json:"submission_id,omitempty"`
	FormID       string    `json:"form_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionEvent is published on submission document creation and update;
// Before is nil for created events.
type SubmissionEvent struct {
	SubmissionID  string      `json:"submission_id"`
	Before        *Submission `json:"before,omitempty"`
	After         *Submission `json:"after"`
	Timestamp     time.Time   `json:"timestamp"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}
