package notifx

import (
	"bytes"
	"html/template"
	"sync"
	texttemplate "text/template"
)

// ReviewReminderTemplate is registered on every Client.
const ReviewReminderTemplate = "review-reminder"

const reviewReminderSubject = `[{{.Repo}}] #{{.Number}} is waiting for review`

const reviewReminderBody = `<p>Pull request <a href="{{.URL}}">#{{.Number}} {{.Title}}</a>
by {{.Author}} has been open for {{.OpenFor}} without a review.</p>
{{if .Reviewers}}<p>Requested reviewers: {{range $i, $r := .Reviewers}}{{if $i}}, {{end}}{{$r}}{{end}}</p>{{end}}`

type emailTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

// TemplateRegistry stores named subject and body templates. Bodies are
// HTML-escaped, subjects are plain text.
type TemplateRegistry struct {
	templates map[string]emailTemplate
	mu        sync.RWMutex
}

// NewTemplateRegistry creates a registry holding the built-in templates.
func NewTemplateRegistry() *TemplateRegistry {
	r := &TemplateRegistry{templates: make(map[string]emailTemplate)}
	if err := r.Register(ReviewReminderTemplate, reviewReminderSubject, reviewReminderBody); err != nil {
		panic(err)
	}
	return r
}

// Register parses and stores a template by name, replacing any previous one.
func (r *TemplateRegistry) Register(name, subject, body string) error {
	st, err := texttemplate.New(name).Parse(subject)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}
	bt, err := template.New(name).Parse(body)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.templates[name] = emailTemplate{subject: st, body: bt}
	r.mu.Unlock()
	return nil
}

// Render executes a named template and returns its subject and HTML body.
func (r *TemplateRegistry) Render(name string, data any) (subject, body string, err error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var sb, bb bytes.Buffer
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return sb.String(), bb.String(), nil
}
