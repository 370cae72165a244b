package asyncx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("not yet visible")
	errFatal     = errors.New("forbidden")
)

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestRetry_ThreadsAttemptUntilSuccess(t *testing.T) {
	var attempts []int
	v, err := asyncx.Retry(context.Background(), isTransient, 5, func(_ context.Context, attempt int) (string, error) {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return "", errTransient
		}
		return "ok", nil
	}, asyncx.WithBackOff(noWait))

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestRetry_FatalErrorIsNotRetried(t *testing.T) {
	calls := 0
	_, err := asyncx.Retry(context.Background(), isTransient, 5, func(context.Context, int) (int, error) {
		calls++
		return 0, errFatal
	}, asyncx.WithBackOff(noWait))

	assert.Same(t, errFatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	calls := 0
	_, err := asyncx.Retry(context.Background(), isTransient, 3, func(context.Context, int) (int, error) {
		calls++
		return 0, errTransient
	}, asyncx.WithBackOff(noWait))

	assert.Same(t, errTransient, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_InvalidAttempts(t *testing.T) {
	called := false
	_, err := asyncx.Retry(context.Background(), isTransient, 0, func(context.Context, int) (int, error) {
		called = true
		return 0, nil
	})

	assert.True(t, errx.HasCode(err, asyncx.ErrInvalidConfig))
	assert.False(t, called)
}

func TestRetry_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delays []time.Duration
	_, err := asyncx.Retry(ctx, isTransient, 5, func(context.Context, int) (int, error) {
		return 0, errTransient
	},
		asyncx.WithBackOff(func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) }),
		asyncx.WithNotify(func(_ error, _ int, d time.Duration) {
			delays = append(delays, d)
			cancel()
		}),
	)

	assert.True(t, asyncx.IsCancelled(err), "got %v", err)
	assert.Equal(t, []time.Duration{time.Hour}, delays)
}

func TestDefaultBackOff_GrowsWithJitter(t *testing.T) {
	b := asyncx.DefaultBackOff()
	first := b.NextBackOff()
	second := b.NextBackOff()

	assert.GreaterOrEqual(t, first, 250*time.Millisecond)
	assert.LessOrEqual(t, first, 750*time.Millisecond)
	assert.GreaterOrEqual(t, second, 500*time.Millisecond)
	assert.LessOrEqual(t, second, 1500*time.Millisecond)
}

func TestRetrying_ComposesWithRun(t *testing.T) {
	failures := map[int]int{1: 2}
	transform := asyncx.Retrying(isTransient, 3, func(_ context.Context, item, _ int) (int, error) {
		if failures[item] > 0 {
			failures[item]--
			return 0, errTransient
		}
		return item * 10, nil
	}, asyncx.WithBackOff(noWait))

	out, err := asyncx.RunSlice(context.Background(), []int{0, 1, 2}, transform, asyncx.WithConcurrency(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, out)
}

func TestWithTimeout(t *testing.T) {
	_, err := asyncx.WithTimeout(context.Background(), 5*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.True(t, errx.HasCode(err, asyncx.ErrTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
