package reactor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() (*logx.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := logx.DefaultConfig()
	cfg.Format = logx.FormatJSON
	cfg.Level = logx.LevelDebug
	cfg.EnableTimestamp = false
	cfg.Output = buf
	return logx.NewLogger(cfg), buf
}

func prEvent(action string) *reactor.Event {
	return &reactor.Event{
		Name:       "pull_request",
		Action:     action,
		DeliveryID: kernel.DeliveryID("d-1"),
		Repo:       kernel.RepoRef{Owner: "acme", Name: "widgets"},
	}
}

func TestDispatch_IsolatesFailures(t *testing.T) {
	logger, _ := quietLogger()
	boom := errors.New("boom")

	d, err := reactor.New([]reactor.Reactor{
		reactor.Func{ID: "thrower", Do: func(context.Context, *reactor.Event) (any, error) {
			panic("kaboom")
		}},
		reactor.Func{ID: "failer", Do: func(context.Context, *reactor.Event) (any, error) {
			return nil, boom
		}},
		reactor.Func{ID: "ok", Do: func(context.Context, *reactor.Event) (any, error) {
			return "done", nil
		}},
	}, reactor.WithLogger(logger))
	require.NoError(t, err)

	outcomes, err := d.Dispatch(context.Background(), prEvent("opened"))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "done", outcomes["ok"].Result)
	assert.NoError(t, outcomes["ok"].Err)
	assert.ErrorIs(t, outcomes["failer"].Err, boom)

	var thrown *asyncx.ThrownError
	require.ErrorAs(t, outcomes["thrower"].Err, &thrown)
	assert.Equal(t, "kaboom thrown", thrown.Error())

	assert.Equal(t, []string{"failer", "thrower"}, outcomes.Failed())
	assert.Equal(t, []string{"failer", "ok", "thrower"}, outcomes.Ran())
}

func TestDispatch_SkipsNonMatching(t *testing.T) {
	logger, _ := quietLogger()
	var called bool

	outcomes, err := reactor.Dispatch(context.Background(), []reactor.Reactor{
		reactor.Func{
			ID:   "on-close",
			When: reactor.On("pull_request", "closed"),
			Do: func(context.Context, *reactor.Event) (any, error) {
				called = true
				return nil, nil
			},
		},
		reactor.Func{ID: "issues", When: reactor.On("issues")},
		reactor.Func{ID: "any-pr", When: reactor.On("pull_request")},
	}, prEvent("opened"), reactor.WithLogger(logger))
	require.NoError(t, err)

	assert.False(t, called)
	assert.True(t, outcomes["on-close"].Skipped)
	assert.True(t, outcomes["issues"].Skipped)
	assert.False(t, outcomes["any-pr"].Skipped)
	assert.Equal(t, reactor.StatusSkipped, outcomes["issues"].Status())
	assert.Equal(t, reactor.StatusOK, outcomes["any-pr"].Status())
	assert.NoError(t, outcomes.Err())
}

func TestDispatch_PanickingFilterIsThatReactorsError(t *testing.T) {
	logger, _ := quietLogger()

	outcomes, err := reactor.Dispatch(context.Background(), []reactor.Reactor{
		reactor.Func{ID: "bad-filter", When: func(context.Context, *reactor.Event) bool {
			panic(errors.New("nil payload"))
		}},
		reactor.Func{ID: "fine"},
	}, prEvent("opened"), reactor.WithLogger(logger))
	require.NoError(t, err)

	assert.True(t, errx.HasCode(outcomes["bad-filter"].Err, reactor.ErrFilterFailed))
	assert.Contains(t, outcomes["bad-filter"].Err.Error(), "nil payload")
	assert.Equal(t, reactor.StatusOK, outcomes["fine"].Status())
}

func TestDispatch_RunsMatchingReactorsConcurrently(t *testing.T) {
	logger, _ := quietLogger()
	const n = 4

	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	reactors := make([]reactor.Reactor, n)
	for i := range reactors {
		reactors[i] = reactor.Func{
			ID: string(rune('a' + i)),
			Do: func(ctx context.Context, _ *reactor.Event) (any, error) {
				arrived.Done()
				select {
				case <-release:
					return i, nil
				case <-time.After(5 * time.Second):
					return nil, errors.New("reactors did not run concurrently")
				}
			},
		}
	}

	outcomes, err := reactor.Dispatch(context.Background(), reactors, prEvent("opened"), reactor.WithLogger(logger))
	require.NoError(t, err)
	assert.NoError(t, outcomes.Err())
	assert.Equal(t, 2, outcomes["c"].Result)
}

func TestDispatch_RejectsBrokenListing(t *testing.T) {
	cases := map[string][]reactor.Reactor{
		"nil":       {reactor.Func{ID: "a"}, nil},
		"empty":     {reactor.Func{ID: ""}},
		"duplicate": {reactor.Func{ID: "a"}, reactor.Func{ID: "b"}, reactor.Func{ID: "a"}},
	}
	for name, reactors := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reactor.New(reactors)
			require.Error(t, err)
			assert.True(t, errx.HasCode(err, reactor.ErrInvalidReactors))
		})
	}
}

func TestDispatch_NilEvent(t *testing.T) {
	d, err := reactor.New(nil)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), nil)
	assert.True(t, errx.HasCode(err, reactor.ErrInvalidEvent))
}

func TestDispatch_PropagatesDeliveryID(t *testing.T) {
	logger, buf := quietLogger()

	outcomes, err := reactor.Dispatch(context.Background(), []reactor.Reactor{
		reactor.Func{ID: "echo", Do: func(ctx context.Context, _ *reactor.Event) (any, error) {
			id, _ := kernel.DeliveryIDFrom(ctx)
			return id.String(), nil
		}},
	}, prEvent("opened"), reactor.WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, "d-1", outcomes["echo"].Result)
	assert.Contains(t, buf.String(), `"delivery_id":"d-1"`)
	assert.Contains(t, buf.String(), "event dispatched")
}

func TestDispatch_ReactorTimeout(t *testing.T) {
	logger, _ := quietLogger()

	outcomes, err := reactor.Dispatch(context.Background(), []reactor.Reactor{
		reactor.Func{ID: "slow", Do: func(ctx context.Context, _ *reactor.Event) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	}, prEvent("opened"), reactor.WithLogger(logger), reactor.WithReactorTimeout(10*time.Millisecond))
	require.NoError(t, err)

	assert.True(t, errx.HasCode(outcomes["slow"].Err, asyncx.ErrTimeout))
}

func TestOutcomes_ErrAndJSON(t *testing.T) {
	outcomes := reactor.Outcomes{
		"labeler":  {Result: []string{"bug"}},
		"reminder": {Skipped: true},
		"status":   {Err: errors.New("502 bad gateway")},
	}

	err := outcomes.Err()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status: 502 bad gateway"), err.Error())

	raw, err := json.Marshal(outcomes)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["reminder"]["skipped"])
	assert.Equal(t, []any{"bug"}, decoded["labeler"]["result"])
	assert.Equal(t, "502 bad gateway", decoded["status"]["error"])
	assert.NotContains(t, decoded["status"], "result")
}
