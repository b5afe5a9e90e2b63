package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/formflow/backend/internal/models"
)

var standardHeaders = []string{
	"Submission ID",
	"Submitter Name",
	"Submitter Email",
	"Status",
	"Submitted At",
	"Approved/Rejected At",
	"Comments",
}

// EscapeField applies the export escaping rule: values containing a comma,
// quote or newline are wrapped in quotes with internal quotes doubled;
// everything else is emitted as-is. Nil renders as an empty string.
func EscapeField(value interface{}) string {
	if value == nil {
		return ""
	}
	s := fmt.Sprintf("%v", value)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// BuildCSV renders submissions into CSV: the standard columns followed by one
// column per form field, in form-definition order.
func BuildCSV(form *models.Form, submissions []models.Submission) string {
	if len(submissions) == 0 {
		return "No submissions found"
	}

	headers := make([]string, 0, len(standardHeaders)+len(form.Fields))
	headers = append(headers, standardHeaders...)
	for _, field := range form.Fields {
		headers = append(headers, field.Label)
	}

	lines := make([]string, 0, len(submissions)+1)
	lines = append(lines, joinRow(headers))

	for _, submission := range submissions {
		row := []string{
			submission.ID,
			submission.SubmitterName,
			submission.SubmitterEmail,
			statusOrPending(submission.Status),
			formatTime(submission.CreatedAt),
			formatTimePtr(submission.ApprovedAt),
			submission.Comments,
		}
		for _, field := range form.Fields {
			value := ""
			if v, ok := submission.Data[field.ID]; ok && v != nil {
				value = fmt.Sprintf("%v", v)
			}
			row = append(row, value)
		}
		lines = append(lines, joinRow(row))
	}

	return strings.Join(lines, "\n")
}

func joinRow(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeField(v)
	}
	return strings.Join(escaped, ",")
}

func statusOrPending(status string) string {
	if status == "" {
		return "pending"
	}
	return status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
