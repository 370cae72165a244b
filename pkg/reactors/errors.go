package reactors

import (
	"fmt"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
)

var reactorsErrors = errx.NewRegistry("REACTORS")

var (
	ErrInvalidRule        = reactorsErrors.Register("INVALID_RULE", errx.TypeValidation, 0, "Invalid reactor rule")
	ErrUnsupportedPayload = reactorsErrors.Register("UNSUPPORTED_PAYLOAD", errx.TypeValidation, 0, "Event payload is not supported by this reactor")
	ErrUnknownReactor     = reactorsErrors.Register("UNKNOWN_REACTOR", errx.TypeValidation, 0, "Unknown reactor")
)

func invalidRule(section string, index int, err error) *errx.Error {
	return reactorsErrors.NewWithCause(ErrInvalidRule, err).
		WithDetail("rule", fmt.Sprintf("%s[%d]", section, index))
}

func unsupportedPayload(ev *reactor.Event) *errx.Error {
	return reactorsErrors.New(ErrUnsupportedPayload).
		WithDetail("event", ev.Kind()).
		WithDetail("payload", fmt.Sprintf("%T", ev.Payload))
}
