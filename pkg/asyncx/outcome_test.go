package asyncx_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToOutcome_CapturesValueAndError(t *testing.T) {
	ctx := context.Background()

	ok := asyncx.ToOutcome(ctx, func(context.Context) (int, error) { return 7, nil })
	assert.True(t, ok.Fulfilled())
	assert.Equal(t, 7, ok.Value())
	assert.NoError(t, ok.Reason())

	boom := errors.New("boom")
	bad := asyncx.ToOutcome(ctx, func(context.Context) (int, error) { return 0, boom })
	assert.True(t, bad.Rejected())
	assert.Same(t, boom, bad.Reason())
}

func TestToOutcome_RecoversPanics(t *testing.T) {
	ctx := context.Background()

	o := asyncx.ToOutcome(ctx, func(context.Context) (string, error) { panic("kaput") })
	require.True(t, o.Rejected())
	assert.EqualError(t, o.Reason(), "kaput thrown")

	var thrown *asyncx.ThrownError
	require.ErrorAs(t, o.Reason(), &thrown)
	assert.Equal(t, "kaput", thrown.Value)

	cause := errors.New("typed")
	o = asyncx.ToOutcome(ctx, func(context.Context) (string, error) { panic(cause) })
	assert.Same(t, cause, o.Reason())
}

func TestIsFulfilledIsRejected_NeverPanic(t *testing.T) {
	var nilPtr *asyncx.Outcome[int]
	f := asyncx.Fulfilled(1)
	r := asyncx.Rejected[int](errors.New("x"))

	for _, v := range []any{nil, 42, "fulfilled", nilPtr, asyncx.Outcome[int]{}} {
		assert.False(t, asyncx.IsFulfilled(v), "%#v", v)
		assert.False(t, asyncx.IsRejected(v), "%#v", v)
	}

	assert.True(t, asyncx.IsFulfilled(f))
	assert.True(t, asyncx.IsFulfilled(&f))
	assert.False(t, asyncx.IsRejected(f))
	assert.True(t, asyncx.IsRejected(r))
	assert.False(t, asyncx.IsFulfilled(r))
}

func TestRejected_NilReasonIsReplaced(t *testing.T) {
	o := asyncx.Rejected[int](nil)
	assert.Error(t, o.Reason())
}

func TestSettleAll_PreservesInputOrder(t *testing.T) {
	delay := func(d time.Duration, v int) func(context.Context) (int, error) {
		return func(context.Context) (int, error) {
			time.Sleep(d)
			return v, nil
		}
	}

	out := asyncx.SettleAll(context.Background(),
		delay(30*time.Millisecond, 1),
		func(context.Context) (int, error) { return 0, errors.New("second") },
		delay(1*time.Millisecond, 3),
	)

	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Value())
	assert.EqualError(t, out[1].Reason(), "second")
	assert.Equal(t, 3, out[2].Value())
}

func TestOutcome_MarshalJSON(t *testing.T) {
	b, err := json.Marshal([]asyncx.Outcome[int]{asyncx.Fulfilled(1), asyncx.Rejected[int](errors.New("x"))})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"status":"fulfilled","value":1},{"status":"rejected","reason":"x"}]`, string(b))
}
