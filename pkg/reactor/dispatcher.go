package reactor

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
)

// Dispatcher fans one event out to a fixed, ordered list of reactors.
// It holds no state between calls and is safe for concurrent use.
type Dispatcher struct {
	reactors []Reactor
	logger   *logx.Logger
	observer Observer
	timeout  time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(l *logx.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver sets the telemetry sink.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithReactorTimeout bounds each React call. Zero disables the bound.
func WithReactorTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// New validates the reactor listing and returns a dispatcher for it.
func New(reactors []Reactor, opts ...Option) (*Dispatcher, error) {
	if err := validate(reactors); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		reactors: append([]Reactor(nil), reactors...),
		logger:   logx.Component("reactor"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch builds a one-off dispatcher and dispatches ev through it.
func Dispatch(ctx context.Context, reactors []Reactor, ev *Event, opts ...Option) (Outcomes, error) {
	d, err := New(reactors, opts...)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, ev)
}

// Reactors returns the registered reactor names in registration order.
func (d *Dispatcher) Reactors() []string {
	names := make([]string, len(d.reactors))
	for i, r := range d.reactors {
		names[i] = r.Name()
	}
	return names
}

// Dispatch evaluates every reactor's filter, runs the matching reactors
// concurrently and returns one outcome per registered reactor once all of
// them have settled. Reactor errors and panics are recorded in the
// outcomes; the returned error is reserved for a broken reactor listing or
// a nil event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (Outcomes, error) {
	if ev == nil {
		return nil, reactorErrors.New(ErrInvalidEvent)
	}
	if err := validate(d.reactors); err != nil {
		return nil, err
	}

	started := time.Now()
	if !ev.DeliveryID.IsEmpty() {
		ctx = kernel.WithDeliveryID(ctx, ev.DeliveryID)
	}
	log := d.logger.With(logx.Fields{
		"event":       ev.Kind(),
		"delivery_id": ev.DeliveryID.String(),
		"repo":        ev.Repo.String(),
	})

	outcomes := make(Outcomes, len(d.reactors))
	var selected []Reactor
	for _, r := range d.reactors {
		matched, err := d.filter(ctx, r, ev)
		switch {
		case err != nil:
			outcomes[r.Name()] = Outcome{Err: err}
		case !matched:
			outcomes[r.Name()] = Outcome{Skipped: true}
		default:
			selected = append(selected, r)
		}
	}

	durations := make([]time.Duration, len(selected))
	ops := make([]func(context.Context) (any, error), len(selected))
	for i, r := range selected {
		ops[i] = func(ctx context.Context) (any, error) {
			begin := time.Now()
			defer func() { durations[i] = time.Since(begin) }()
			return d.react(ctx, r, ev)
		}
	}
	settled := asyncx.SettleAll(ctx, ops...)

	for i, r := range selected {
		result, err := settled[i].Get()
		outcomes[r.Name()] = Outcome{Result: result, Err: err, Duration: durations[i]}
	}

	for _, name := range outcomes.Names() {
		o := outcomes[name]
		d.observer.ObserveReactor(name, o.Status(), o.Duration)
		switch o.Status() {
		case StatusError:
			log.WithError(o.Err).WithField("reactor", name).Warn("reactor failed")
		case StatusOK:
			log.WithField("reactor", name).WithField("duration", o.Duration.String()).Debug("reactor finished")
		}
	}

	elapsed := time.Since(started)
	d.observer.ObserveDispatch(ev.Kind(), elapsed)
	log.WithFields(logx.Fields{
		"ran":      len(selected),
		"failed":   len(outcomes.Failed()),
		"duration": elapsed.String(),
	}).Info("event dispatched")

	return outcomes, nil
}

func (d *Dispatcher) filter(ctx context.Context, r Reactor, ev *Event) (bool, error) {
	matched, err := asyncx.ToOutcome(ctx, func(ctx context.Context) (bool, error) {
		return r.Filter(ctx, ev), nil
	}).Get()
	if err != nil {
		return false, reactorErrors.NewWithCause(ErrFilterFailed, err).WithDetail("reactor", r.Name())
	}
	return matched, nil
}

func (d *Dispatcher) react(ctx context.Context, r Reactor, ev *Event) (any, error) {
	return asyncx.WithTimeout(ctx, d.timeout, func(ctx context.Context) (any, error) {
		return r.React(ctx, ev)
	})
}

func validate(reactors []Reactor) error {
	seen := make(map[string]int, len(reactors))
	for i, r := range reactors {
		if r == nil {
			return invalidReactors(fmt.Sprintf("reactor %d is nil", i), i)
		}
		name := r.Name()
		if name == "" {
			return invalidReactors(fmt.Sprintf("reactor %d has an empty name", i), i)
		}
		if prev, ok := seen[name]; ok {
			return invalidReactors(fmt.Sprintf("reactor %q registered at %d and %d", name, prev, i), i).
				WithDetail("reactor", name)
		}
		seen[name] = i
	}
	return nil
}
