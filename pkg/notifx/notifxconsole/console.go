package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/notifx"
)

// ConsoleProvider logs emails instead of sending them. Intended for
// development and tests.
type ConsoleProvider struct {
	logger *logx.Logger
}

// NewConsoleProvider creates a console provider logging through logger,
// or the default logger when logger is nil.
func NewConsoleProvider(logger *logx.Logger) *ConsoleProvider {
	if logger == nil {
		logger = logx.Component("notifx")
	}
	return &ConsoleProvider{logger: logger}
}

// SendEmail logs the email details.
func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.ApplySendOptions(opts)
	fields := logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	}
	for k, v := range so.Tags {
		fields["tag."+k] = v
	}
	p.logger.WithFields(fields).Info("email sent (console)")

	if msg.TextBody != "" {
		p.logger.Debugf("text body:\n%s", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		p.logger.Debugf("html body:\n%s", msg.HTMLBody)
	}
	return nil
}
