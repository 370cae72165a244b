package notifxses

import (
	"context"
	"sort"
	"strings"

	"github.com/Abraxas-365/reactorbot/pkg/notifx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// API is the subset of the SES client used by SESProvider.
type API interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider implements notifx.EmailSender using AWS SES.
type SESProvider struct {
	client      API
	fromAddress string
	configSet   string
}

// ProviderOption configures an SESProvider.
type ProviderOption func(*SESProvider)

// WithConfigurationSet applies set to every send that does not name its
// own through notifx.WithConfigID.
func WithConfigurationSet(set string) ProviderOption {
	return func(p *SESProvider) {
		p.configSet = set
	}
}

// NewSESProvider creates a new SES email provider.
func NewSESProvider(client API, fromAddress string, opts ...ProviderOption) *SESProvider {
	p := &SESProvider{
		client:      client,
		fromAddress: fromAddress,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SendEmail sends a single email via SES. Reminder tags such as
// repo=acme/widgets are rewritten to the characters SES accepts.
func (p *SESProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	input := p.buildInput(msg, notifx.ApplySendOptions(opts))

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return sesErrors.NewWithCause(ErrSendFailed, err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}
	return nil
}

func (p *SESProvider) buildInput(msg notifx.EmailMessage, so notifx.SendOptions) *ses.SendEmailInput {
	from := msg.From
	if from == "" {
		from = p.fromAddress
	}

	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = utf8(msg.TextBody)
	}
	if msg.HTMLBody != "" {
		body.Html = utf8(msg.HTMLBody)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: msg.To,
			CcAddresses: msg.CC,
		},
		Message: &types.Message{Subject: utf8(msg.Subject), Body: body},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	switch {
	case so.ConfigID != "":
		input.ConfigurationSetName = aws.String(so.ConfigID)
	case p.configSet != "":
		input.ConfigurationSetName = aws.String(p.configSet)
	}

	names := make([]string, 0, len(so.Tags))
	for k := range so.Tags {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		input.Tags = append(input.Tags, types.MessageTag{
			Name:  aws.String(tagValue(k)),
			Value: aws.String(tagValue(so.Tags[k])),
		})
	}
	return input
}

func utf8(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

// tagValue maps every character outside [A-Za-z0-9_-] to '_'; SES rejects
// sends whose tags contain anything else.
func tagValue(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}
