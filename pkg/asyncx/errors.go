package asyncx

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
)

var asyncxErrors = errx.NewRegistry("ASYNCX")

var (
	ErrCancelled     = asyncxErrors.Register("CANCELLED", errx.TypeCancelled, 0, "Operation cancelled")
	ErrInvalidConfig = asyncxErrors.Register("INVALID_CONFIG", errx.TypeValidation, 0, "Invalid concurrency configuration")
	ErrTimeout       = asyncxErrors.Register("TIMEOUT", errx.TypeExternal, 504, "Operation timed out")
)

// IsCancelled reports whether err was produced by a cancellation signal
// rather than by the work itself.
func IsCancelled(err error) bool {
	return errx.HasCode(err, ErrCancelled)
}

func cancelledError(cause error) *errx.Error {
	if cause == nil || errors.Is(cause, context.Canceled) {
		return asyncxErrors.New(ErrCancelled)
	}
	return asyncxErrors.NewWithCause(ErrCancelled, cause)
}

func invalidConfig(option string, value int) *errx.Error {
	return asyncxErrors.NewWithMessage(ErrInvalidConfig, fmt.Sprintf("invalid %s: %d", option, value)).
		WithDetail("option", option).
		WithDetail("value", value)
}

// ThrownError is the reason recorded when an operation panics with a value
// that is not an error.
type ThrownError struct {
	Value any
}

func (e *ThrownError) Error() string {
	return fmt.Sprintf("%v thrown", e.Value)
}

// recovered normalises a recovered panic value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &ThrownError{Value: r}
}
