package webhook

import "github.com/Abraxas-365/reactorbot/pkg/errx"

var webhookErrors = errx.NewRegistry("WEBHOOK")

var (
	ErrMissingEvent   = webhookErrors.Register("MISSING_EVENT", errx.TypeValidation, 400, "X-GitHub-Event header is required")
	ErrInvalidPayload = webhookErrors.Register("INVALID_PAYLOAD", errx.TypeValidation, 400, "Webhook payload could not be decoded")
)
