package email

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/formflow/backend/internal/models"
)

// Renderer maps a notification kind and its payload to a subject line and an
// HTML body. Rendering is deterministic for identical payloads; all
// caller-supplied strings are escaped by html/template except the Custom
// kind, which passes the caller's HTML through unchanged.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

const baseLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<div style="background: {{.HeaderColor}}; color: white; padding: 20px; border-radius: 8px 8px 0 0;">
<h1>{{.Heading}}</h1>
</div>
<div style="background: #f8fafc; padding: 20px; border-radius: 0 0 8px 8px;">
{{.Content}}
</div>
<div style="text-align: center; margin-top: 20px; color: #64748b; font-size: 14px;">
<p>This email was sent automatically by FormFlow</p>
</div>
</div>
</body>
</html>`

var (
	layoutTmpl = template.Must(template.New("layout").Parse(baseLayout))

	newSubmissionTmpl = template.Must(template.New("new_submission").Parse(`<p>You have received a new submission for your form: <strong>{{.FormTitle}}</strong></p>
<h3>Submitter Details:</h3>
<div style="margin-bottom: 15px;">
<span style="font-weight: bold; color: #1e293b;">Name:</span>
<span style="color: #475569;">{{.SubmitterName}}</span>
</div>
<div style="margin-bottom: 15px;">
<span style="font-weight: bold; color: #1e293b;">Email:</span>
<span style="color: #475569;">{{.SubmitterEmail}}</span>
</div>
{{if .Fields}}<h3>Submission Details:</h3>
{{range .Fields}}<div style="margin-bottom: 15px;">
<span style="font-weight: bold; color: #1e293b;">{{.Key}}:</span>
<span style="color: #475569;">{{.Value}}</span>
</div>
{{end}}{{end}}`))

	submissionDecisionTmpl = template.Must(template.New("submission_decision").Parse(`<div style="font-size: 24px; font-weight: bold; margin-bottom: 20px;">
Your submission for <strong>{{.FormTitle}}</strong> has been <strong>{{.Status}}</strong>
</div>
{{if .Comments}}<h3>Comments:</h3>
<p>{{.Comments}}</p>
{{end}}<p>Thank you for your submission!</p>`))

	formPublishedTmpl = template.Must(template.New("form_published").Parse(`<p>Your form <strong>{{.FormTitle}}</strong> has been published and is now ready to collect responses.</p>
{{if .ShareLink}}<h3>Share Link:</h3>
<div style="background: #e2e8f0; padding: 10px; border-radius: 4px; word-break: break-all;">{{.ShareLink}}</div>
{{end}}<p>You can now share this form with others to start collecting responses.</p>`))

	formSharedTmpl = template.Must(template.New("form_shared").Parse(`<h2 style="color: #356BF8;">Hello {{.RecipientName}}!</h2>
<p>A new form has been shared with you via FormFlow.</p>
<div style="background: #f8f9fa; padding: 20px; border-radius: 8px; border-left: 4px solid #356BF8;">
<h3 style="margin-top: 0;">{{.FormTitle}}</h3>
<p style="color: #666;">{{.Description}}</p>
{{if .ShareLink}}<a href="{{.ShareLink}}" style="background: #356BF8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Fill Out Form</a>
{{end}}</div>
<p style="font-size: 14px; color: #666;">If you have any questions, please contact the form creator.</p>`))
)

type layoutData struct {
	Title       string
	Heading     string
	HeaderColor string
	Content     template.HTML
}

type submissionField struct {
	Key   string
	Value string
}

// Render produces the subject and HTML body for the given kind.
func (r *Renderer) Render(kind models.NotificationKind, payload models.EmailPayload) (models.RenderedEmail, error) {
	switch kind {
	case models.KindNewSubmission:
		return r.newSubmission(payload)
	case models.KindSubmissionDecision:
		return r.submissionDecision(payload)
	case models.KindFormPublished:
		return r.formPublished(payload)
	case models.KindFormShared:
		return r.formShared(payload)
	case models.KindCustom:
		return models.RenderedEmail{Subject: payload.Subject, HTML: payload.HTML}, nil
	default:
		return models.RenderedEmail{}, fmt.Errorf("no template for notification kind %q", kind)
	}
}

func (r *Renderer) newSubmission(p models.EmailPayload) (models.RenderedEmail, error) {
	fields := make([]submissionField, 0, len(p.SubmissionData))
	for key, value := range p.SubmissionData {
		if key == "name" || key == "email" {
			continue
		}
		fields = append(fields, submissionField{Key: key, Value: fmt.Sprintf("%v", value)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

	content, err := execute(newSubmissionTmpl, struct {
		FormTitle      string
		SubmitterName  string
		SubmitterEmail string
		Fields         []submissionField
	}{p.FormTitle, p.SubmitterName, p.SubmitterEmail, fields})
	if err != nil {
		return models.RenderedEmail{}, err
	}

	return r.wrap(layoutData{
		Title:       "New Form Submission",
		Heading:     "New Form Submission",
		HeaderColor: "#2563eb",
		Content:     content,
	}, fmt.Sprintf("New Submission: %s", p.FormTitle))
}

func (r *Renderer) submissionDecision(p models.EmailPayload) (models.RenderedEmail, error) {
	headerColor := "#ef4444"
	if p.Status == "approved" {
		headerColor = "#10b981"
	}

	content, err := execute(submissionDecisionTmpl, struct {
		FormTitle string
		Status    string
		Comments  string
	}{p.FormTitle, p.Status, p.Comments})
	if err != nil {
		return models.RenderedEmail{}, err
	}

	return r.wrap(layoutData{
		Title:       fmt.Sprintf("Submission %s", p.Status),
		Heading:     fmt.Sprintf("Submission %s", capitalize(p.Status)),
		HeaderColor: headerColor,
		Content:     content,
	}, fmt.Sprintf("Submission %s: %s", p.Status, p.FormTitle))
}

func (r *Renderer) formPublished(p models.EmailPayload) (models.RenderedEmail, error) {
	content, err := execute(formPublishedTmpl, struct {
		FormTitle string
		ShareLink string
	}{p.FormTitle, p.ShareLink})
	if err != nil {
		return models.RenderedEmail{}, err
	}

	return r.wrap(layoutData{
		Title:       "Form Published",
		Heading:     "Form Published Successfully!",
		HeaderColor: "#2563eb",
		Content:     content,
	}, fmt.Sprintf("Form Published: %s", p.FormTitle))
}

func (r *Renderer) formShared(p models.EmailPayload) (models.RenderedEmail, error) {
	description := p.FormDescription
	if description == "" {
		description = "No description provided"
	}

	content, err := execute(formSharedTmpl, struct {
		RecipientName string
		FormTitle     string
		Description   string
		ShareLink     string
	}{p.RecipientName, p.FormTitle, description, p.ShareLink})
	if err != nil {
		return models.RenderedEmail{}, err
	}

	return r.wrap(layoutData{
		Title:       "FormFlow - New Form Shared",
		Heading:     "New Form Shared",
		HeaderColor: "#356BF8",
		Content:     content,
	}, fmt.Sprintf("FormFlow: New Form Shared - %s", p.FormTitle))
}

func (r *Renderer) wrap(data layoutData, subject string) (models.RenderedEmail, error) {
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, data); err != nil {
		return models.RenderedEmail{}, fmt.Errorf("failed to render email layout: %w", err)
	}
	return models.RenderedEmail{Subject: subject, HTML: buf.String()}, nil
}

func execute(tmpl *template.Template, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
