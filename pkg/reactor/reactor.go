// Package reactor dispatches one inbound event to every registered reactor
// whose filter accepts it. Reactors run concurrently and in isolation: a
// failure or panic in one is recorded in its own outcome and never stops
// or hides the others.
package reactor

import (
	"context"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/kernel"
)

// Event is the context handed to every reactor for one delivery.
type Event struct {
	// Name is the event type, e.g. "pull_request" or "issues".
	Name   string
	Action string

	DeliveryID kernel.DeliveryID
	Repo       kernel.RepoRef

	// Payload is the decoded event, usually a *github.XxxEvent.
	Payload    any
	ReceivedAt time.Time
}

// Kind returns "name.action", or just the name when the event has no action.
func (e *Event) Kind() string {
	if e.Action == "" {
		return e.Name
	}
	return e.Name + "." + e.Action
}

// Reactor is one independent automation rule.
type Reactor interface {
	// Name identifies the reactor in outcomes, logs and metrics.
	// It must be non-empty and unique within a dispatcher.
	Name() string

	// Filter reports whether the reactor wants to handle ev. It should be
	// cheap and side-effect free.
	Filter(ctx context.Context, ev *Event) bool

	// React performs the reactor's effects. The returned value is recorded
	// as the reactor's result.
	React(ctx context.Context, ev *Event) (any, error)
}

// Func adapts plain functions to the Reactor interface. A nil When accepts
// every event.
type Func struct {
	ID   string
	When func(ctx context.Context, ev *Event) bool
	Do   func(ctx context.Context, ev *Event) (any, error)
}

var _ Reactor = Func{}

func (f Func) Name() string { return f.ID }

func (f Func) Filter(ctx context.Context, ev *Event) bool {
	if f.When == nil {
		return true
	}
	return f.When(ctx, ev)
}

func (f Func) React(ctx context.Context, ev *Event) (any, error) {
	if f.Do == nil {
		return nil, nil
	}
	return f.Do(ctx, ev)
}

// On returns a filter accepting events named name, restricted to the given
// actions when any are listed.
func On(name string, actions ...string) func(context.Context, *Event) bool {
	return func(_ context.Context, ev *Event) bool {
		if ev.Name != name {
			return false
		}
		if len(actions) == 0 {
			return true
		}
		for _, a := range actions {
			if ev.Action == a {
				return true
			}
		}
		return false
	}
}
