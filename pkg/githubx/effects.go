package githubx

import (
	"context"

	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/ptrx"
	"github.com/google/go-github/v53/github"
)

// Commit status states accepted by GitHub.
const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// CommitStatus is the status reported on a commit.
type CommitStatus struct {
	State       string
	Context     string
	Description string
	TargetURL   string
}

// AddLabels adds labels to an issue or pull request and returns the
// resulting label names.
func (c *Client) AddLabels(ctx context.Context, repo kernel.RepoRef, number int, labels ...string) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	added, err := call(ctx, c, "add_labels", IsTransient, func(ctx context.Context) ([]*github.Label, error) {
		out, _, err := c.gh.Issues.AddLabelsToIssue(ctx, repo.Owner, repo.Name, number, labels)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(added))
	for _, l := range added {
		names = append(names, l.GetName())
	}
	return names, nil
}

// RemoveLabel removes a label. A label that is not on the issue is not an
// error.
func (c *Client) RemoveLabel(ctx context.Context, repo kernel.RepoRef, number int, label string) error {
	// 404 here means the label is absent, so it is not retried
	retryable := func(err error) bool { return IsTransient(err) && !IsNotFound(err) }

	_, err := call(ctx, c, "remove_label", retryable, func(ctx context.Context) (struct{}, error) {
		_, err := c.gh.Issues.RemoveLabelForIssue(ctx, repo.Owner, repo.Name, number, label)
		return struct{}{}, err
	})
	if IsNotFound(err) {
		return nil
	}
	return err
}

// SetCommitStatus reports status on sha.
func (c *Client) SetCommitStatus(ctx context.Context, repo kernel.RepoRef, sha string, status CommitStatus) (*github.RepoStatus, error) {
	req := &github.RepoStatus{
		State:   ptrx.To(status.State),
		Context: ptrx.To(status.Context),
	}
	if status.Description != "" {
		req.Description = ptrx.To(status.Description)
	}
	if status.TargetURL != "" {
		req.TargetURL = ptrx.To(status.TargetURL)
	}
	return call(ctx, c, "create_status", IsTransient, func(ctx context.Context) (*github.RepoStatus, error) {
		out, _, err := c.gh.Repositories.CreateStatus(ctx, repo.Owner, repo.Name, sha, req)
		return out, err
	})
}

// GetPullRequest fetches a pull request.
func (c *Client) GetPullRequest(ctx context.Context, repo kernel.RepoRef, number int) (*github.PullRequest, error) {
	return call(ctx, c, "get_pull_request", IsTransient, func(ctx context.Context) (*github.PullRequest, error) {
		pr, _, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
		return pr, err
	})
}

// CreateComment posts a comment on an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, repo kernel.RepoRef, number int, body string) (*github.IssueComment, error) {
	return call(ctx, c, "create_comment", IsTransient, func(ctx context.Context) (*github.IssueComment, error) {
		out, _, err := c.gh.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{Body: ptrx.To(body)})
		return out, err
	})
}
