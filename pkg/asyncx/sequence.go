package asyncx

import (
	"context"
	"io"
	"sync"
)

// Sequence is a pull-based source of values consumed one at a time.
// Next returns ok=false once the sequence is exhausted. A Sequence that
// holds resources (connections, timers, pending requests) should also
// implement io.Closer; Close may be called while a Next is still running.
type Sequence[T any] interface {
	Next(ctx context.Context) (item T, ok bool, err error)
}

// SequenceFunc adapts a generator function to a Sequence.
type SequenceFunc[T any] func(ctx context.Context) (T, bool, error)

// Next calls f.
func (f SequenceFunc[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

type sliceSequence[T any] struct {
	items []T
	pos   int
}

// FromSlice returns a Sequence yielding items in order.
func FromSlice[T any](items []T) Sequence[T] {
	return &sliceSequence[T]{items: items}
}

func (s *sliceSequence[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}

// PageFetcher loads one page of items. It returns the next page token, or
// 0 when the page is the last one.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, next int, err error)

// PageSequence flattens a paginated remote listing into a Sequence. Pages
// are fetched lazily, so a consumer that stops early never requests the
// pages it did not need.
type PageSequence[T any] struct {
	fetch   PageFetcher[T]
	buf     []T
	page    int
	last    bool
	mu      sync.Mutex
	closed  bool
	onClose func()
}

// Paginate builds a PageSequence starting at firstPage. onClose, when
// non-nil, runs once when the sequence is closed.
func Paginate[T any](firstPage int, fetch PageFetcher[T], onClose func()) *PageSequence[T] {
	return &PageSequence[T]{fetch: fetch, page: firstPage, onClose: onClose}
}

// Next returns the next buffered item, fetching the following page when
// the buffer runs dry.
func (p *PageSequence[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return zero, false, nil
		}
		if len(p.buf) > 0 {
			item := p.buf[0]
			p.buf = p.buf[1:]
			p.mu.Unlock()
			return item, true, nil
		}
		if p.last {
			p.mu.Unlock()
			return zero, false, nil
		}
		page := p.page
		p.mu.Unlock()

		items, next, err := p.fetch(ctx, page)
		if err != nil {
			return zero, false, err
		}

		p.mu.Lock()
		p.buf = append(p.buf, items...)
		p.page = next
		p.last = next == 0
		p.mu.Unlock()
	}
}

// Close stops the sequence; later calls to Next report exhaustion.
func (p *PageSequence[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.buf = nil
	onClose := p.onClose
	p.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}

type step[T any] struct {
	item T
	ok   bool
	err  error
}

// CancellableSequence wraps a Sequence so that iteration stops as soon as
// its context is cancelled. It is single-use and must be consumed from one
// goroutine.
//
// The wrapper owns a child context for its lifetime. On every terminal
// path (exhaustion, producer error, cancellation) that context is released
// and the producer's Close hook, if any, is invoked exactly once.
//
// When cancellation wins while the producer's Next is still running, that
// call keeps running, Close may run alongside it, and any item it later
// yields is discarded.
type CancellableSequence[T any] struct {
	src    Sequence[T]
	ctx    context.Context
	cancel context.CancelCauseFunc

	once     sync.Once
	done     bool
	err      error
	closeErr error
}

// Cancellable wraps src with cancellation driven by parent.
func Cancellable[T any](parent context.Context, src Sequence[T]) *CancellableSequence[T] {
	ctx, cancel := context.WithCancelCause(parent)
	return &CancellableSequence[T]{src: src, ctx: ctx, cancel: cancel}
}

// Next races the producer's next value against cancellation. When
// cancellation wins, or had already fired, it returns an ErrCancelled
// error without starting a new fetch.
func (s *CancellableSequence[T]) Next() (T, bool, error) {
	var zero T
	if s.done {
		return zero, false, s.err
	}
	if s.ctx.Err() != nil {
		return zero, false, s.finish(cancelledError(context.Cause(s.ctx)))
	}

	ch := make(chan step[T], 1)
	go func() {
		var st step[T]
		defer func() {
			if r := recover(); r != nil {
				st = step[T]{err: recovered(r)}
			}
			ch <- st
		}()
		st.item, st.ok, st.err = s.src.Next(s.ctx)
	}()

	select {
	case st := <-ch:
		if st.err != nil {
			return zero, false, s.finish(st.err)
		}
		if !st.ok {
			return zero, false, s.finish(nil)
		}
		return st.item, true, nil
	case <-s.ctx.Done():
		return zero, false, s.finish(cancelledError(context.Cause(s.ctx)))
	}
}

// Cancel stops the sequence. It is safe to call any number of times,
// including after the sequence has completed; the producer's Close hook
// never runs more than once.
func (s *CancellableSequence[T]) Cancel() {
	s.cancel(nil)
	s.release()
}

// Err returns the error that ended the sequence, if any.
func (s *CancellableSequence[T]) Err() error {
	return s.err
}

// CloseErr returns the error reported by the producer's Close hook.
func (s *CancellableSequence[T]) CloseErr() error {
	return s.closeErr
}

func (s *CancellableSequence[T]) finish(err error) error {
	s.done = true
	s.err = err
	s.release()
	return err
}

func (s *CancellableSequence[T]) release() {
	s.once.Do(func() {
		s.cancel(nil)
		if c, ok := s.src.(io.Closer); ok {
			s.closeErr = c.Close()
		}
	})
}
