package reactors_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/ptrx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/Abraxas-365/reactorbot/pkg/reactors"
	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issues(numbers ...int) []*github.Issue {
	out := make([]*github.Issue, len(numbers))
	for i, n := range numbers {
		out[i] = &github.Issue{Number: ptrx.To(n), Title: ptrx.To("fix crash"), State: ptrx.To("open")}
	}
	return out
}

func TestSweep_DispatchesEveryIssueAndCountsFailures(t *testing.T) {
	gh := newFakeGitHub()
	l, err := reactors.NewLabeler(gh, labelRules)
	require.NoError(t, err)
	flaky := reactor.Func{
		ID: "flaky",
		Do: func(_ context.Context, ev *reactor.Event) (any, error) {
			if ev.Payload.(*github.IssuesEvent).GetIssue().GetNumber() == 2 {
				return nil, errors.New("boom")
			}
			return "ok", nil
		},
	}
	d, err := reactor.New([]reactor.Reactor{l, flaky})
	require.NoError(t, err)

	report, err := reactors.Sweep(context.Background(), repo, asyncx.FromSlice(issues(1, 2, 3)), d, asyncx.WithConcurrency(2))
	require.NoError(t, err)

	require.Len(t, report.Items, 3)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []int{1, 2, 3}, []int{report.Items[0].Number, report.Items[1].Number, report.Items[2].Number})
	assert.ErrorContains(t, report.Items[1].Err, "flaky: boom")
	assert.Equal(t, []string{"flaky"}, report.Items[1].Outcomes.Failed())
	assert.Equal(t, []string{"bug"}, gh.added[3])
}

func TestSweep_LimitStopsPulling(t *testing.T) {
	var dispatched atomic.Int32
	d, err := reactor.New([]reactor.Reactor{reactor.Func{
		ID: "count",
		Do: func(context.Context, *reactor.Event) (any, error) {
			dispatched.Add(1)
			return nil, nil
		},
	}})
	require.NoError(t, err)

	report, err := reactors.Sweep(context.Background(), repo, asyncx.FromSlice(issues(1, 2, 3, 4, 5)), d, asyncx.WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, report.Items, 2)
	assert.Zero(t, report.Failed)
	assert.EqualValues(t, 2, dispatched.Load())
}

func TestSweep_InvalidOptions(t *testing.T) {
	_, err := reactors.Sweep(context.Background(), repo, asyncx.FromSlice(issues(1)), nil, asyncx.WithConcurrency(0))
	assert.True(t, errx.HasCode(err, asyncx.ErrInvalidConfig))
}
