package errx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testErrors = errx.NewRegistry("TEST")

var (
	errGone  = testErrors.Register("GONE", errx.TypeNotFound, 0, "Thing is gone")
	errOther = testErrors.Register("OTHER", errx.TypeExternal, 503, "Other failure")
)

func TestRegistry_PrefixesCodesAndDefaultsStatus(t *testing.T) {
	assert.Equal(t, "TEST_GONE", errGone.Code)
	assert.Equal(t, 404, errGone.HTTPStatus)
	assert.Equal(t, 503, errOther.HTTPStatus)

	got, ok := testErrors.Get("GONE")
	require.True(t, ok)
	assert.Same(t, errGone, got)
}

func TestHasCode_WalksWrapChain(t *testing.T) {
	base := testErrors.New(errGone).WithDetail("id", 7)
	wrapped := fmt.Errorf("while fetching: %w", errx.Wrap(base, "fetch failed", errx.TypeExternal))

	assert.True(t, errx.HasCode(wrapped, errGone))
	assert.False(t, errx.HasCode(wrapped, errOther))
	assert.False(t, errx.HasCode(errors.New("plain"), errGone))
	assert.False(t, errx.HasCode(nil, errGone))
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	a := testErrors.New(errGone)
	b := testErrors.NewWithCause(errGone, errors.New("cause"))

	assert.ErrorIs(t, fmt.Errorf("ctx: %w", b), a)
	assert.NotErrorIs(t, b, testErrors.New(errOther))
}

func TestWrap_PreservesRegisteredCode(t *testing.T) {
	cause := testErrors.New(errOther)
	w := errx.Wrap(cause, "outer", errx.TypeInternal)

	assert.Equal(t, errOther.Code, w.Code)
	assert.Equal(t, 503, w.HTTPStatus)
	assert.Nil(t, errx.Wrap(nil, "nothing", errx.TypeInternal))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, errx.TypeCancelled, errx.TypeOf(errx.New("stop", errx.TypeCancelled)))
	assert.Equal(t, errx.TypeInternal, errx.TypeOf(errors.New("plain")))
	assert.Equal(t, 499, errx.New("stop", errx.TypeCancelled).HTTPStatus)
}
