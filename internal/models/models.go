package models

import (
	"fmt"
	"strings"
	"time"
)

// NotificationKind identifies which email template a request renders.
type NotificationKind string

const (
	KindNewSubmission      NotificationKind = "new_submission"
	KindSubmissionDecision NotificationKind = "submission_decision"
	KindFormPublished      NotificationKind = "form_published"
	KindFormShared         NotificationKind = "form_shared"
	KindCustom             NotificationKind = "custom"
	KindTest               NotificationKind = "test"
)

// EmailPayload carries the kind-specific template fields. Unused fields are
// ignored by the renderer.
type EmailPayload struct {
	FormTitle       string         `json:"form_title,omitempty"`
	FormDescription string         `json:"form_description,omitempty"`
	SubmitterName   string         `json:"submitter_name,omitempty"`
	SubmitterEmail  string         `json:"submitter_email,omitempty"`
	Status          string         `json:"status,omitempty"`
	Comments        string         `json:"comments,omitempty"`
	RecipientName   string         `json:"recipient_name,omitempty"`
	ShareLink       string         `json:"share_link,omitempty"`
	SubmissionData  map[string]any `json:"submission_data,omitempty"`
	// Custom emails supply subject and HTML directly.
	Subject string `json:"subject,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// NotificationRequest is the unit of work entering dispatch.
type NotificationRequest struct {
	To   string           `json:"to" binding:"required"`
	Kind NotificationKind `json:"type" binding:"required"`

	Payload EmailPayload `json:"payload"`

	// FormOwnerEmail enables owner self-notification suppression for
	// submission decision emails.
	FormOwnerEmail string `json:"form_owner_email,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

// ValidationError reports a malformed or incomplete NotificationRequest.
// It is surfaced to the caller before any side effect occurs.
type ValidationError struct {
	Kind  NotificationKind
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q for %s email", e.Field, e.Kind)
}

// requiredFields maps each kind to the payload fields it cannot render without.
var requiredFields = map[NotificationKind][]string{
	KindNewSubmission:      {"form_title", "submitter_name", "submitter_email"},
	KindSubmissionDecision: {"form_title", "status", "submitter_name"},
	KindFormPublished:      {"form_title"},
	KindFormShared:         {"form_title", "recipient_name"},
}

// Validate checks the request shape against the per-kind required-field table.
func (r *NotificationRequest) Validate() error {
	if !strings.Contains(r.To, "@") {
		return &ValidationError{Kind: r.Kind, Field: "to"}
	}
	for _, field := range requiredFields[r.Kind] {
		if r.payloadField(field) == "" {
			return &ValidationError{Kind: r.Kind, Field: field}
		}
	}
	return nil
}

func (r *NotificationRequest) payloadField(name string) string {
	switch name {
	case "form_title":
		return r.Payload.FormTitle
	case "submitter_name":
		return r.Payload.SubmitterName
	case "submitter_email":
		return r.Payload.SubmitterEmail
	case "status":
		return r.Payload.Status
	case "recipient_name":
		return r.Payload.RecipientName
	default:
		return ""
	}
}

// Suppressed reports whether this request must be skipped to avoid notifying
// a form owner about their own approval action.
func (r *NotificationRequest) Suppressed() bool {
	return r.Kind == KindSubmissionDecision &&
		r.FormOwnerEmail != "" &&
		strings.EqualFold(r.To, r.FormOwnerEmail)
}

// RenderedEmail is the template renderer output, consumed immediately by the
// delivery client and never persisted.
type RenderedEmail struct {
	Subject string
	HTML    string
}

// DeliveryResult is the uniform outcome of a dispatch attempt.
type DeliveryResult struct {
	Success     bool   `json:"success"`
	Skipped     bool   `json:"skipped,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
	ErrorDetail string `json:"error,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// EmailLog is one append-only audit record per send attempt.
type EmailLog struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	To        string           `json:"to"`
	Subject   string           `json:"subject"`
	SentAt    time.Time        `json:"sent_at"`
	Success   bool             `json:"success"`
	MessageID string           `json:"message_id,omitempty"`
	Error     string           `json:"error,omitempty"`
	Provider  string           `json:"provider,omitempty"`
}

// APIResponse is the JSON envelope all endpoints return.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
}
