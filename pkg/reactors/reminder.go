package reactors

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/githubx"
	"github.com/Abraxas-365/reactorbot/pkg/jobx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/notifx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/google/go-github/v53/github"
)

// ReminderJobType is the jobx type of scheduled review reminders.
const ReminderJobType = "review-reminder"

// ReminderPayload is the job payload of a review reminder.
type ReminderPayload struct {
	Repo     kernel.RepoRef `json:"repo"`
	Number   int            `json:"number"`
	OpenedAt time.Time      `json:"opened_at"`
}

// JobEnqueuer schedules jobs.
type JobEnqueuer interface {
	EnqueueDelayed(ctx context.Context, job jobx.Job, delay time.Duration) (string, error)
}

// Reminder schedules a review reminder when a ready pull request opens.
type Reminder struct {
	jobs JobEnqueuer
	rule config.ReminderRule
	now  func() time.Time
}

var _ reactor.Reactor = (*Reminder)(nil)

// ReminderResult describes the scheduled reminder.
type ReminderResult struct {
	JobID  string    `json:"job_id,omitempty"`
	DueAt  time.Time `json:"due_at"`
	Exists bool      `json:"already_scheduled,omitempty"`
}

// NewReminder returns a Reminder reactor for rule.
func NewReminder(jobs JobEnqueuer, rule config.ReminderRule) *Reminder {
	return &Reminder{jobs: jobs, rule: rule, now: time.Now}
}

func (r *Reminder) Name() string { return "reminder" }

func (r *Reminder) Filter(_ context.Context, ev *reactor.Event) bool {
	if r.rule.Delay <= 0 || len(r.rule.Recipients) == 0 {
		return false
	}
	if ev.Name != "pull_request" || (ev.Action != "opened" && ev.Action != "ready_for_review") {
		return false
	}
	subj, ok := subjectOf(ev)
	return ok && !subj.Draft
}

func (r *Reminder) React(ctx context.Context, ev *reactor.Event) (any, error) {
	subj, ok := subjectOf(ev)
	if !ok {
		return nil, unsupportedPayload(ev)
	}

	now := r.now().UTC()
	job, err := jobx.NewJob(ReminderJobType, ReminderPayload{Repo: ev.Repo, Number: subj.Number, OpenedAt: now})
	if err != nil {
		return nil, err
	}
	job.Queue = r.rule.Queue
	job.Key = fmt.Sprintf("%s:%s#%d", ReminderJobType, ev.Repo, subj.Number)

	due := now.Add(r.rule.Delay)
	id, err := r.jobs.EnqueueDelayed(ctx, job, r.rule.Delay)
	if jobx.IsDuplicate(err) {
		return ReminderResult{DueAt: due, Exists: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return ReminderResult{JobID: id, DueAt: due}, nil
}

// PullRequestGetter looks up pull requests.
type PullRequestGetter interface {
	GetPullRequest(ctx context.Context, repo kernel.RepoRef, number int) (*github.PullRequest, error)
}

// TemplatedSender sends templated email.
type TemplatedSender interface {
	SendTemplatedEmail(ctx context.Context, templateName string, data any, msg notifx.EmailMessage, opts ...notifx.Option) error
}

// ReminderHandler runs review-reminder jobs: it emails the recipients when
// the pull request is still open and unmerged.
type ReminderHandler struct {
	gh         PullRequestGetter
	mail       TemplatedSender
	recipients []string
	logger     *logx.Logger
	now        func() time.Time
}

// NewReminderHandler returns the handler for ReminderJobType.
func NewReminderHandler(gh PullRequestGetter, mail TemplatedSender, rule config.ReminderRule) *ReminderHandler {
	return &ReminderHandler{
		gh:         gh,
		mail:       mail,
		recipients: rule.Recipients,
		logger:     logx.Component("reminder"),
		now:        time.Now,
	}
}

// Handle is a jobx.HandlerFunc.
func (h *ReminderHandler) Handle(ctx context.Context, job *jobx.JobInfo) error {
	p, err := jobx.Decode[ReminderPayload](job)
	if err != nil {
		return err
	}
	log := h.logger.With(logx.Fields{"repo": p.Repo.String(), "number": p.Number, "job_id": job.ID})

	pr, err := h.gh.GetPullRequest(ctx, p.Repo, p.Number)
	if githubx.IsNotFound(err) {
		log.Info("pull request gone, reminder dropped")
		return nil
	}
	if err != nil {
		return err
	}
	if pr.GetState() != "open" || pr.GetMerged() || pr.GetDraft() {
		log.WithField("state", pr.GetState()).Debug("pull request no longer waiting, reminder dropped")
		return nil
	}

	opened := pr.GetCreatedAt().Time
	if opened.IsZero() {
		opened = p.OpenedAt
	}
	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, u := range pr.RequestedReviewers {
		reviewers = append(reviewers, u.GetLogin())
	}

	data := notifx.ReviewReminder{
		Repo:      p.Repo.String(),
		Number:    p.Number,
		Title:     pr.GetTitle(),
		URL:       pr.GetHTMLURL(),
		Author:    pr.GetUser().GetLogin(),
		Reviewers: reviewers,
		OpenFor:   humanize(h.now().Sub(opened)),
	}
	msg := notifx.EmailMessage{To: h.recipients}
	tags := notifx.WithTags(map[string]string{"kind": ReminderJobType, "repo": p.Repo.Name})
	if err := h.mail.SendTemplatedEmail(ctx, notifx.ReviewReminderTemplate, data, msg, tags); err != nil {
		return err
	}
	log.Info("review reminder sent")
	return nil
}

// humanize renders d in whole days, or whole hours below two days.
func humanize(d time.Duration) string {
	switch hours := int(d.Hours()); {
	case hours >= 48:
		return fmt.Sprintf("%d days", hours/24)
	case hours == 1:
		return "1 hour"
	case hours > 1:
		return fmt.Sprintf("%d hours", hours)
	default:
		return "less than an hour"
	}
}
