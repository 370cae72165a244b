// Package reactors holds the automation reactors. Each one is a mechanism
// driven by rule data from the rules file.
package reactors

import (
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/ptrx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/google/go-github/v53/github"
)

// ActionSweep marks synthetic events produced by the sweep command.
const ActionSweep = "sweep"

// subject is the issue or pull request an event is about.
type subject struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	State     string
	Author    string
	URL       string
	IsPR      bool
	Draft     bool
	HeadSHA   string
	Reviewers []string
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

// subjectOf extracts the subject from a decoded payload.
func subjectOf(ev *reactor.Event) (subject, bool) {
	switch p := ev.Payload.(type) {
	case *github.PullRequestEvent:
		pr := p.GetPullRequest()
		if pr == nil {
			return subject{}, false
		}
		reviewers := make([]string, 0, len(pr.RequestedReviewers))
		for _, u := range pr.RequestedReviewers {
			reviewers = append(reviewers, u.GetLogin())
		}
		return subject{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			Body:      pr.GetBody(),
			Labels:    labelNames(pr.Labels),
			State:     pr.GetState(),
			Author:    pr.GetUser().GetLogin(),
			URL:       pr.GetHTMLURL(),
			IsPR:      true,
			Draft:     pr.GetDraft(),
			HeadSHA:   pr.GetHead().GetSHA(),
			Reviewers: reviewers,
		}, true
	case *github.IssuesEvent:
		issue := p.GetIssue()
		if issue == nil {
			return subject{}, false
		}
		return subject{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			Body:   issue.GetBody(),
			Labels: labelNames(issue.Labels),
			State:  issue.GetState(),
			Author: issue.GetUser().GetLogin(),
			URL:    issue.GetHTMLURL(),
			IsPR:   issue.IsPullRequest(),
		}, true
	}
	return subject{}, false
}

// SweepEvent wraps an issue listed by a sweep as a synthetic event.
func SweepEvent(repo kernel.RepoRef, issue *github.Issue) *reactor.Event {
	return &reactor.Event{
		Name:       "issues",
		Action:     ActionSweep,
		DeliveryID: kernel.NewDeliveryID(),
		Repo:       repo,
		Payload:    &github.IssuesEvent{Action: ptrx.To(ActionSweep), Issue: issue},
	}
}
