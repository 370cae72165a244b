package asyncx_test

import (
	"context"
	"sync"
	"sync/atomic"
)

// countingSource yields items and records how often it was pulled and closed.
type countingSource[T any] struct {
	items  []T
	pos    int
	pulls  atomic.Int32
	closes atomic.Int32

	closedOnce sync.Once
	closed     chan struct{}
}

func newCountingSource[T any](items ...T) *countingSource[T] {
	return &countingSource[T]{items: items, closed: make(chan struct{})}
}

func (s *countingSource[T]) Next(context.Context) (T, bool, error) {
	s.pulls.Add(1)
	var zero T
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}

func (s *countingSource[T]) Close() error {
	s.closes.Add(1)
	s.closedOnce.Do(func() { close(s.closed) })
	return nil
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
