package notifx_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/notifx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notifx.EmailMessage
	fail map[string]error
}

func (s *recordingSender) SendEmail(_ context.Context, msg notifx.EmailMessage, _ ...notifx.Option) error {
	if err := s.fail[msg.To[0]]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func TestSendEmail_Validates(t *testing.T) {
	c := notifx.NewClient(&recordingSender{})

	err := c.SendEmail(context.Background(), notifx.EmailMessage{Subject: "hi"})
	assert.True(t, errx.HasCode(err, notifx.ErrInvalidMessage))

	err = c.SendEmail(context.Background(), notifx.EmailMessage{To: []string{"a@example.com"}})
	assert.True(t, errx.HasCode(err, notifx.ErrInvalidMessage))
}

func TestSendTemplatedEmail_ReviewReminder(t *testing.T) {
	sender := &recordingSender{}
	c := notifx.NewClient(sender, notifx.WithFrom("bot@example.com"))

	err := c.SendTemplatedEmail(context.Background(), notifx.ReviewReminderTemplate, notifx.ReviewReminder{
		Repo:      "acme/widgets",
		Number:    12,
		Title:     "Fix <script> escaping",
		URL:       "https://github.com/acme/widgets/pull/12",
		Author:    "octocat",
		Reviewers: []string{"alice", "bob"},
		OpenFor:   "2 days",
	}, notifx.EmailMessage{To: []string{"team@example.com"}})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "bot@example.com", msg.From)
	assert.Equal(t, "[acme/widgets] #12 is waiting for review", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Fix &lt;script&gt; escaping")
	assert.Contains(t, msg.HTMLBody, "alice, bob")
}

func TestSendTemplatedEmail_UnknownTemplate(t *testing.T) {
	c := notifx.NewClient(&recordingSender{})
	err := c.SendTemplatedEmail(context.Background(), "nope", nil, notifx.EmailMessage{To: []string{"x@example.com"}})
	assert.True(t, errx.HasCode(err, notifx.ErrTemplateNotFound))
}

func TestRegisterTemplate_ParseError(t *testing.T) {
	c := notifx.NewClient(&recordingSender{})
	err := c.RegisterTemplate("broken", "{{.Oops", "body")
	assert.True(t, errx.HasCode(err, notifx.ErrTemplateParse))
}

func TestSendBulkEmail_IsolatesFailures(t *testing.T) {
	sender := &recordingSender{fail: map[string]error{"b@example.com": errors.New("mailbox full")}}
	c := notifx.NewClient(sender, notifx.WithBulkConcurrency(2))

	msgs := []notifx.EmailMessage{
		{To: []string{"a@example.com"}, Subject: "1"},
		{To: []string{"b@example.com"}, Subject: "2"},
		{To: []string{"c@example.com"}, Subject: "3"},
	}
	results, err := c.SendBulkEmail(context.Background(), msgs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "mailbox full", results[1].Error)
	assert.Equal(t, []string{"b@example.com"}, results[1].To)
	assert.True(t, results[2].Success)
	assert.Len(t, sender.sent, 2)
}
