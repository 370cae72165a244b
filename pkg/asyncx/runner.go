package asyncx

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Transform maps one pulled item to a result. index is the zero-based
// pull position of item.
type Transform[T, R any] func(ctx context.Context, item T, index int) (R, error)

type runConfig struct {
	concurrency int
	bounded     bool
	limit       int
	limited     bool
}

// RunOption configures Run and its variants.
type RunOption func(*runConfig)

// WithConcurrency caps the number of transforms in flight. n must be at
// least 1. Without it concurrency is unbounded.
func WithConcurrency(n int) RunOption {
	return func(c *runConfig) {
		c.concurrency = n
		c.bounded = true
	}
}

// WithLimit stops pulling after n items. n must be at least 0; a limit of
// 0 returns immediately without touching the source.
func WithLimit(n int) RunOption {
	return func(c *runConfig) {
		c.limit = n
		c.limited = true
	}
}

func newRunConfig(opts []RunOption) (runConfig, error) {
	var cfg runConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.bounded && cfg.concurrency < 1 {
		return cfg, invalidConfig("concurrency", cfg.concurrency)
	}
	if cfg.limited && cfg.limit < 0 {
		return cfg, invalidConfig("limit", cfg.limit)
	}
	return cfg, nil
}

// Run drains src through transform with bounded concurrency and returns
// the results in pull order.
//
// Run is fail-fast: the first transform error stops further pulls, lets
// transforms already started run to completion, discards their results
// and is returned. Transforms receive ctx, not an internal context, so
// stopping the run never interrupts work that has already begun.
//
// Run returns only after every started transform has returned. If ctx is
// cancelled the result is an ErrCancelled error.
func Run[T, R any](ctx context.Context, src Sequence[T], transform Transform[T, R], opts ...RunOption) ([]R, error) {
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.limited && cfg.limit == 0 {
		return []R{}, nil
	}

	pullCtx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	seq := Cancellable(pullCtx, src)
	defer seq.Cancel()

	var sem *semaphore.Weighted
	if cfg.bounded {
		sem = semaphore.NewWeighted(int64(cfg.concurrency))
	}

	var (
		mu       sync.Mutex
		results  []R
		firstErr error
		wg       sync.WaitGroup
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		abort(err)
	}

	stopped := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil || pullCtx.Err() != nil
	}

	for index := 0; !cfg.limited || index < cfg.limit; index++ {
		if stopped() {
			break
		}
		if sem != nil {
			if err := sem.Acquire(pullCtx, 1); err != nil {
				break
			}
			// Acquire may win against a concurrent abort; failed
			// transforms abort before freeing their slot.
			if pullCtx.Err() != nil {
				sem.Release(1)
				break
			}
		}

		item, ok, err := seq.Next()
		if err != nil || !ok {
			if sem != nil {
				sem.Release(1)
			}
			if err != nil && !IsCancelled(err) {
				fail(err)
			}
			break
		}
		// A failure recorded while Next was running still wins; the
		// pulled item is dropped untransformed.
		if stopped() {
			if sem != nil {
				sem.Release(1)
			}
			break
		}

		mu.Lock()
		var zero R
		results = append(results, zero)
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}

			v, err := ToOutcome(ctx, func(ctx context.Context) (R, error) {
				return transform(ctx, item, index)
			}).Get()
			if err != nil {
				fail(err)
				return
			}

			mu.Lock()
			results[index] = v
			mu.Unlock()
		}()
	}

	// Reaching the limit is a normal stop; cancelling lets the producer
	// release whatever it still holds.
	seq.Cancel()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, cancelledError(context.Cause(ctx))
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Settle is Run without fail-fast: every transform's result is captured as
// an Outcome and the run always proceeds up to the limit. The error is
// non-nil only for invalid options, a failing source or cancellation.
func Settle[T, R any](ctx context.Context, src Sequence[T], transform Transform[T, R], opts ...RunOption) ([]Outcome[R], error) {
	return Run(ctx, src, func(ctx context.Context, item T, index int) (Outcome[R], error) {
		return ToOutcome(ctx, func(ctx context.Context) (R, error) {
			return transform(ctx, item, index)
		}), nil
	}, opts...)
}

// Collect materialises up to the limit of src into a slice.
func Collect[T any](ctx context.Context, src Sequence[T], opts ...RunOption) ([]T, error) {
	return Run(ctx, src, func(_ context.Context, item T, _ int) (T, error) {
		return item, nil
	}, opts...)
}

// OnlyFailures settles src and keeps the rejected outcomes.
func OnlyFailures[T, R any](ctx context.Context, src Sequence[T], transform Transform[T, R], opts ...RunOption) ([]Outcome[R], error) {
	outcomes, err := Settle(ctx, src, transform, opts...)
	if err != nil {
		return nil, err
	}
	return Rejections(outcomes), nil
}

// RunSlice is Run over a slice.
func RunSlice[T, R any](ctx context.Context, items []T, transform Transform[T, R], opts ...RunOption) ([]R, error) {
	return Run(ctx, FromSlice(items), transform, opts...)
}

// SettleSlice is Settle over a slice.
func SettleSlice[T, R any](ctx context.Context, items []T, transform Transform[T, R], opts ...RunOption) ([]Outcome[R], error) {
	return Settle(ctx, FromSlice(items), transform, opts...)
}
