package asyncx

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
)

// Kind tags an Outcome as fulfilled or rejected.
type Kind uint8

const (
	KindFulfilled Kind = iota + 1
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindFulfilled:
		return "fulfilled"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the settled result of one operation: either a value or a
// reason, never both. The zero Outcome is neither fulfilled nor rejected.
type Outcome[T any] struct {
	kind   Kind
	value  T
	reason error
}

// Fulfilled builds a successful Outcome.
func Fulfilled[T any](v T) Outcome[T] {
	return Outcome[T]{kind: KindFulfilled, value: v}
}

// Rejected builds a failed Outcome. A nil err is replaced so that Reason
// is always inspectable.
func Rejected[T any](err error) Outcome[T] {
	if err == nil {
		err = errors.New("rejected without a reason")
	}
	return Outcome[T]{kind: KindRejected, reason: err}
}

// Kind reports whether the outcome is fulfilled or rejected.
func (o Outcome[T]) Kind() Kind { return o.kind }

// Value is the fulfilled value; the zero value when rejected.
func (o Outcome[T]) Value() T { return o.value }

// Reason is the rejection error; nil when fulfilled.
func (o Outcome[T]) Reason() error { return o.reason }

func (o Outcome[T]) Fulfilled() bool { return o.kind == KindFulfilled }

func (o Outcome[T]) Rejected() bool { return o.kind == KindRejected }

// Get unpacks the outcome into the usual (value, error) pair.
func (o Outcome[T]) Get() (T, error) {
	return o.value, o.reason
}

func (o Outcome[T]) outcomeKind() Kind { return o.kind }

// MarshalJSON renders {"status":"fulfilled","value":...} or
// {"status":"rejected","reason":"..."}.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	if o.kind == KindRejected {
		return json.Marshal(struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		}{o.kind.String(), o.reason.Error()})
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Value  T      `json:"value"`
	}{o.kind.String(), o.value})
}

type settled interface {
	outcomeKind() Kind
}

func kindOf(v any) Kind {
	if v == nil {
		return 0
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return 0
	}
	s, ok := v.(settled)
	if !ok {
		return 0
	}
	return s.outcomeKind()
}

// IsFulfilled reports whether v is a fulfilled Outcome of any type.
// It returns false for anything else, including nil.
func IsFulfilled(v any) bool { return kindOf(v) == KindFulfilled }

// IsRejected reports whether v is a rejected Outcome of any type.
// It returns false for anything else, including nil.
func IsRejected(v any) bool { return kindOf(v) == KindRejected }

// ToOutcome runs op and captures its result. It never panics: a panic
// inside op becomes a rejection whose reason is the panic value, wrapped
// in a ThrownError when the value is not an error.
func ToOutcome[T any](ctx context.Context, op func(context.Context) (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Rejected[T](recovered(r))
		}
	}()

	v, err := op(ctx)
	if err != nil {
		return Rejected[T](err)
	}
	return Fulfilled(v)
}

// SettleAll runs every op concurrently and waits for all of them. The
// outcome at index i always belongs to ops[i].
func SettleAll[T any](ctx context.Context, ops ...func(context.Context) (T, error)) []Outcome[T] {
	results := make([]Outcome[T], len(ops))

	var wg sync.WaitGroup
	wg.Add(len(ops))
	for i, op := range ops {
		go func() {
			defer wg.Done()
			results[i] = ToOutcome(ctx, op)
		}()
	}
	wg.Wait()

	return results
}

// Rejections returns the rejected outcomes of outcomes, in order.
func Rejections[T any](outcomes []Outcome[T]) []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range outcomes {
		if o.Rejected() {
			failed = append(failed, o)
		}
	}
	return failed
}
