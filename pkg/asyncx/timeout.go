package asyncx

import (
	"context"
	"errors"
	"time"
)

// WithTimeout runs fn with a deadline of d. fn is expected to honour its
// context; it is never abandoned. A deadline hit is reported as ErrTimeout
// wrapping fn's error.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	v, err := fn(tctx)
	if err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return v, asyncxErrors.NewWithCause(ErrTimeout, err).WithDetail("timeout", d.String())
	}
	return v, err
}
