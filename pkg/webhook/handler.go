// Package webhook exposes the dispatcher over HTTP: GitHub deliveries come
// in, per-reactor outcomes go out.
package webhook

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-github/v53/github"
)

// Dispatcher runs reactors for one event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *reactor.Event) (reactor.Outcomes, error)
}

// Response is the body returned for a delivery.
type Response struct {
	DeliveryID string           `json:"delivery_id"`
	Event      string           `json:"event"`
	Ignored    bool             `json:"ignored,omitempty"`
	Outcomes   reactor.Outcomes `json:"outcomes,omitempty"`
	Failed     []string         `json:"failed,omitempty"`
}

// Handler receives GitHub webhook deliveries.
type Handler struct {
	dispatcher Dispatcher
	logger     *logx.Logger
	now        func() time.Time
}

// NewHandler returns a handler dispatching through d.
func NewHandler(d Dispatcher, logger *logx.Logger) *Handler {
	if logger == nil {
		logger = logx.Component("webhook")
	}
	return &Handler{dispatcher: d, logger: logger, now: time.Now}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/webhooks/github", h.HandleGitHub)
}

// HandleGitHub decodes a delivery, dispatches it and answers with the
// outcomes: 200 when every reactor succeeded or skipped, 207 when any
// failed, 202 for event types the bot does not decode.
func (h *Handler) HandleGitHub(c *fiber.Ctx) error {
	eventType := c.Get("X-GitHub-Event")
	if eventType == "" {
		return webhookErrors.New(ErrMissingEvent)
	}

	delivery := kernel.DeliveryID(c.Get("X-GitHub-Delivery"))
	if delivery.IsEmpty() {
		delivery = kernel.NewDeliveryID()
	}
	resp := Response{DeliveryID: delivery.String(), Event: eventType}

	if eventType == "ping" || github.EventForType(eventType) == nil {
		resp.Ignored = true
		return c.Status(fiber.StatusAccepted).JSON(resp)
	}

	payload, err := github.ParseWebHook(eventType, body(c))
	if err != nil {
		return webhookErrors.NewWithCause(ErrInvalidPayload, err).WithDetail("event", eventType)
	}

	ev := &reactor.Event{
		Name:       eventType,
		Action:     actionOf(payload),
		DeliveryID: delivery,
		Repo:       repoOf(payload),
		Payload:    payload,
		ReceivedAt: h.now(),
	}

	outcomes, err := h.dispatcher.Dispatch(c.UserContext(), ev)
	if err != nil {
		return err
	}

	resp.Event = ev.Kind()
	resp.Outcomes = outcomes
	resp.Failed = outcomes.Failed()

	status := fiber.StatusOK
	if len(resp.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(resp)
}

// body returns the JSON payload, unwrapping form-encoded deliveries.
func body(c *fiber.Ctx) []byte {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		return []byte(c.FormValue("payload"))
	}
	return c.Body()
}

func actionOf(payload any) string {
	if p, ok := payload.(interface{ GetAction() string }); ok {
		return p.GetAction()
	}
	return ""
}

func repoOf(payload any) kernel.RepoRef {
	switch p := payload.(type) {
	case interface{ GetRepo() *github.Repository }:
		r := p.GetRepo()
		return kernel.RepoRef{Owner: r.GetOwner().GetLogin(), Name: r.GetName()}
	case interface {
		GetRepo() *github.PushEventRepository
	}:
		r := p.GetRepo()
		return kernel.RepoRef{Owner: r.GetOwner().GetLogin(), Name: r.GetName()}
	}
	return kernel.RepoRef{}
}
