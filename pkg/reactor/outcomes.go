package reactor

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Status summarises one reactor's part in a dispatch.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Outcome is the record for one reactor. A skipped reactor has neither a
// result nor an error.
type Outcome struct {
	Skipped  bool
	Result   any
	Err      error
	Duration time.Duration
}

// Status returns the outcome's status.
func (o Outcome) Status() Status {
	switch {
	case o.Skipped:
		return StatusSkipped
	case o.Err != nil:
		return StatusError
	default:
		return StatusOK
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type wire struct {
		Skipped    bool    `json:"skipped"`
		Result     any     `json:"result,omitempty"`
		Error      string  `json:"error,omitempty"`
		DurationMS float64 `json:"duration_ms,omitempty"`
	}
	w := wire{Skipped: o.Skipped, DurationMS: float64(o.Duration.Microseconds()) / 1000}
	if o.Err != nil {
		w.Error = o.Err.Error()
	} else {
		w.Result = o.Result
	}
	return json.Marshal(w)
}

// Outcomes maps reactor names to their outcome. Every registered reactor
// has exactly one entry.
type Outcomes map[string]Outcome

// Names returns the reactor names in sorted order.
func (o Outcomes) Names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failed returns the sorted names of reactors that errored.
func (o Outcomes) Failed() []string {
	return o.with(StatusError)
}

// Ran returns the sorted names of reactors that were not skipped.
func (o Outcomes) Ran() []string {
	names := o.with(StatusOK)
	names = append(names, o.with(StatusError)...)
	sort.Strings(names)
	return names
}

func (o Outcomes) with(status Status) []string {
	var names []string
	for _, name := range o.Names() {
		if o[name].Status() == status {
			names = append(names, name)
		}
	}
	return names
}

// Err aggregates reactor errors in name order, or returns nil when none failed.
func (o Outcomes) Err() error {
	var result *multierror.Error
	for _, name := range o.Failed() {
		result = multierror.Append(result, fmt.Errorf("%s: %w", name, o[name].Err))
	}
	return result.ErrorOrNil()
}
