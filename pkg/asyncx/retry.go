package asyncx

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Classifier decides whether an error is transient and worth retrying.
type Classifier func(err error) bool

type retryConfig struct {
	newBackOff func() backoff.BackOff
	notify     func(err error, attempt int, delay time.Duration)
}

// RetryOption configures Retry.
type RetryOption func(*retryConfig)

// WithBackOff replaces the delay policy. The factory is called once per
// Retry call so policies never share state between calls.
func WithBackOff(factory func() backoff.BackOff) RetryOption {
	return func(c *retryConfig) {
		if factory != nil {
			c.newBackOff = factory
		}
	}
}

// WithNotify registers a callback invoked before each wait with the error
// that triggered the retry, the attempt that failed and the chosen delay.
func WithNotify(fn func(err error, attempt int, delay time.Duration)) RetryOption {
	return func(c *retryConfig) {
		c.notify = fn
	}
}

// DefaultBackOff is exponential with jitter: 500ms doubling up to 30s,
// each delay randomised by ±50%. Attempts, not elapsed time, bound it.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Retry calls op until it succeeds, classify rejects its error, or
// maxAttempts calls have been made. attempt starts at 1 and is passed to
// op on every call. When Retry gives up, op's last error is returned
// unchanged. Cancellation of ctx while waiting between attempts returns
// an ErrCancelled error.
func Retry[T any](ctx context.Context, classify Classifier, maxAttempts int, op func(ctx context.Context, attempt int) (T, error), opts ...RetryOption) (T, error) {
	var zero T
	if maxAttempts < 1 {
		return zero, invalidConfig("max attempts", maxAttempts)
	}

	cfg := retryConfig{newBackOff: DefaultBackOff}
	for _, o := range opts {
		o(&cfg)
	}

	b := cfg.newBackOff()
	b.Reset()

	for attempt := 1; ; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if attempt >= maxAttempts || classify == nil || !classify(err) {
			return zero, err
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return zero, err
		}
		if cfg.notify != nil {
			cfg.notify(err, attempt, delay)
		}
		if werr := sleep(ctx, delay); werr != nil {
			return zero, werr
		}
	}
}

// Retrying wraps a runner transform so every item is retried on its own.
func Retrying[T, R any](classify Classifier, maxAttempts int, transform Transform[T, R], opts ...RetryOption) Transform[T, R] {
	return func(ctx context.Context, item T, index int) (R, error) {
		return Retry(ctx, classify, maxAttempts, func(ctx context.Context, _ int) (R, error) {
			return transform(ctx, item, index)
		}, opts...)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if ctx.Err() != nil {
			return cancelledError(context.Cause(ctx))
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return cancelledError(context.Cause(ctx))
	case <-t.C:
		return nil
	}
}
