package reactor

import (
	"github.com/Abraxas-365/reactorbot/pkg/errx"
)

var reactorErrors = errx.NewRegistry("REACTOR")

var (
	ErrInvalidReactors = reactorErrors.Register("INVALID_REACTORS", errx.TypeInternal, 500, "Invalid reactor registration")
	ErrFilterFailed    = reactorErrors.Register("FILTER_FAILED", errx.TypeInternal, 500, "Reactor filter failed")
	ErrInvalidEvent    = reactorErrors.Register("INVALID_EVENT", errx.TypeValidation, 400, "Invalid event")
)

func invalidReactors(msg string, index int) *errx.Error {
	return reactorErrors.NewWithMessage(ErrInvalidReactors, msg).WithDetail("index", index)
}
