package githubx

import (
	"context"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/google/go-github/v53/github"
)

// DefaultPerPage is the page size used when none is given.
const DefaultPerPage = 50

// OpenIssues lists the open issues and pull requests of repo as a lazy
// sequence. Each page request is retried like any other call.
func (c *Client) OpenIssues(repo kernel.RepoRef, perPage int) *asyncx.PageSequence[*github.Issue] {
	if perPage <= 0 || perPage > 100 {
		perPage = DefaultPerPage
	}
	fetch := func(ctx context.Context, page int) ([]*github.Issue, int, error) {
		type result struct {
			issues []*github.Issue
			next   int
		}
		r, err := call(ctx, c, "list_issues", IsTransient, func(ctx context.Context) (result, error) {
			issues, resp, err := c.gh.Issues.ListByRepo(ctx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
				State:       "open",
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return result{}, err
			}
			return result{issues: issues, next: resp.NextPage}, nil
		})
		return r.issues, r.next, err
	}
	return asyncx.Paginate(1, fetch, func() {
		c.logger.WithField("repo", repo.String()).Debug("issue listing closed")
	})
}
