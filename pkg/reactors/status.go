package reactors

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/githubx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/google/go-github/v53/github"
)

// StatusClient reports commit statuses and looks up pull requests.
type StatusClient interface {
	SetCommitStatus(ctx context.Context, repo kernel.RepoRef, sha string, status githubx.CommitStatus) (*github.RepoStatus, error)
	GetPullRequest(ctx context.Context, repo kernel.RepoRef, number int) (*github.PullRequest, error)
}

// Status keeps a commit status on a pull request's head commit: success
// once one of the required labels is present, pending otherwise.
type Status struct {
	gh   StatusClient
	rule config.StatusRule
}

var _ reactor.Reactor = (*Status)(nil)

// StatusResult is the status a Status reactor reported.
type StatusResult struct {
	SHA   string `json:"sha"`
	State string `json:"state"`
}

// NewStatus returns a Status reactor for rule.
func NewStatus(gh StatusClient, rule config.StatusRule) *Status {
	return &Status{gh: gh, rule: rule}
}

func (s *Status) Name() string { return "status" }

func (s *Status) Filter(_ context.Context, ev *reactor.Event) bool {
	if len(s.rule.RequiredLabels) == 0 {
		return false
	}
	switch ev.Name {
	case "pull_request":
		return slices.Contains([]string{"opened", "reopened", "synchronize", "labeled", "unlabeled", "ready_for_review"}, ev.Action)
	case "issues":
		subj, ok := subjectOf(ev)
		return ev.Action == ActionSweep && ok && subj.IsPR && subj.State == "open"
	}
	return false
}

func (s *Status) React(ctx context.Context, ev *reactor.Event) (any, error) {
	subj, ok := subjectOf(ev)
	if !ok {
		return nil, unsupportedPayload(ev)
	}

	// issue listings carry no head commit
	sha := subj.HeadSHA
	if sha == "" {
		pr, err := s.gh.GetPullRequest(ctx, ev.Repo, subj.Number)
		if err != nil {
			return nil, err
		}
		sha = pr.GetHead().GetSHA()
		subj.Labels = labelNames(pr.Labels)
	}

	status := githubx.CommitStatus{
		State:     githubx.StatePending,
		Context:   s.rule.Context,
		TargetURL: s.rule.TargetURL,
		Description: fmt.Sprintf("Waiting for one of: %s",
			strings.Join(s.rule.RequiredLabels, ", ")),
	}
	for _, required := range s.rule.RequiredLabels {
		if slices.Contains(subj.Labels, required) {
			status.State = githubx.StateSuccess
			status.Description = fmt.Sprintf("Labelled %s", required)
			break
		}
	}

	if _, err := s.gh.SetCommitStatus(ctx, ev.Repo, sha, status); err != nil {
		return nil, err
	}
	return StatusResult{SHA: sha, State: status.State}, nil
}
