// Package notifx sends email notifications through a pluggable provider.
package notifx

import (
	"context"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
)

// DefaultBulkConcurrency bounds parallel sends in SendBulkEmail.
const DefaultBulkConcurrency = 4

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client validates, renders and sends emails.
type Client struct {
	provider        EmailSender
	templates       *TemplateRegistry
	from            string
	bulkConcurrency int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFrom sets the sender used when a message has none.
func WithFrom(from string) ClientOption {
	return func(c *Client) { c.from = from }
}

// WithBulkConcurrency bounds parallel sends in SendBulkEmail.
func WithBulkConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.bulkConcurrency = n
		}
	}
}

// NewClient creates a new notification client.
func NewClient(provider EmailSender, opts ...ClientOption) *Client {
	c := &Client{
		provider:        provider,
		templates:       NewTemplateRegistry(),
		bulkConcurrency: DefaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// SendBulkEmail sends every message independently. A failed message never
// stops the others; its error is reported in its SendResult.
func (c *Client) SendBulkEmail(ctx context.Context, msgs []EmailMessage, opts ...Option) ([]SendResult, error) {
	outcomes, err := asyncx.SettleSlice(ctx, msgs, func(ctx context.Context, msg EmailMessage, _ int) (struct{}, error) {
		return struct{}{}, c.SendEmail(ctx, msg, opts...)
	}, asyncx.WithConcurrency(c.bulkConcurrency))
	if err != nil {
		return nil, err
	}

	results := make([]SendResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = SendResult{To: msgs[i].To, Success: o.Fulfilled()}
		if o.Rejected() {
			results[i].Error = o.Reason().Error()
		}
	}
	return results, nil
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, subject, body string) error {
	return c.templates.Register(name, subject, body)
}

// SendTemplatedEmail renders a template into msg's subject and HTML body
// and sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data any, msg EmailMessage, opts ...Option) error {
	subject, body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.Subject = subject
	msg.HTMLBody = body
	return c.SendEmail(ctx, msg, opts...)
}
