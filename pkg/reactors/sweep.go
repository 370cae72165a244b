package reactors

import (
	"context"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/google/go-github/v53/github"
)

// Dispatcher runs reactors for one event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *reactor.Event) (reactor.Outcomes, error)
}

// SweepItem is the result of dispatching one listed issue.
type SweepItem struct {
	Number   int
	Outcomes reactor.Outcomes
	Err      error
}

// SweepReport summarises a sweep in pull order.
type SweepReport struct {
	Items  []SweepItem
	Failed int
}

// Sweep drains issues, dispatching each one as a synthetic event with at
// most the configured number of dispatches in flight. An item fails when
// the dispatch errors or any of its reactors fails; a failed item never
// stops the sweep. The returned error is reserved for invalid options and a
// failing or cancelled listing.
func Sweep(ctx context.Context, repo kernel.RepoRef, issues asyncx.Sequence[*github.Issue], d Dispatcher, opts ...asyncx.RunOption) (SweepReport, error) {
	settled, err := asyncx.Settle(ctx, issues, func(ctx context.Context, issue *github.Issue, _ int) (SweepItem, error) {
		item := SweepItem{Number: issue.GetNumber()}
		item.Outcomes, item.Err = d.Dispatch(ctx, SweepEvent(repo, issue))
		if item.Err == nil {
			item.Err = item.Outcomes.Err()
		}
		return item, nil
	}, opts...)

	report := SweepReport{Items: make([]SweepItem, len(settled))}
	for i, o := range settled {
		item, panicked := o.Get()
		if panicked != nil {
			item.Err = panicked
		}
		if item.Err != nil {
			report.Failed++
		}
		report.Items[i] = item
	}
	return report, err
}
