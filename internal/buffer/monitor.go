package buffer

import (
	"context"
	"sync"
	"time"

	errs "github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/internal/ring"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// Ensure implementation satisfies interface at compile time.
var _ buffer.Buffer[any] = (*Monitor[any])(nil)

// Monitor is a bounded buffer guarded by one mutex and two condition queues:
// notFull ("a slot was freed") and notEmpty ("an item became available").
//
// Every access to the store happens with mu held; mu is released for the
// whole duration of a suspension.
type Monitor[T any] struct {
	mu       sync.Mutex
	store    *ring.Store[T]
	notFull  waitQueue
	notEmpty waitQueue
}

// NewMonitor creates a monitor-based buffer. It panics if capacity < 1; use New
// for validated construction.
func NewMonitor[T any](capacity int) *Monitor[T] {
	return &Monitor[T]{store: ring.New[T](capacity)}
}

// Insert adds v, blocking while the buffer is full.
func (m *Monitor[T]) Insert(ctx context.Context, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.store.Full() {
		if err := m.notFull.wait(ctx, &m.mu, nil); err != nil {
			return errs.Interrupted(err)
		}
	}
	m.push(v)
	return nil
}

// Extract removes the oldest element, blocking while the buffer is empty.
func (m *Monitor[T]) Extract(ctx context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.store.Empty() {
		if err := m.notEmpty.wait(ctx, &m.mu, nil); err != nil {
			var zero T
			return zero, errs.Interrupted(err)
		}
	}
	return m.pop(), nil
}

// TryInsert adds v if a slot is free, without waiting.
func (m *Monitor[T]) TryInsert(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.Full() {
		return false
	}
	m.push(v)
	return true
}

// TryExtract removes the oldest element if one is present, without waiting.
func (m *Monitor[T]) TryExtract() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.Empty() {
		var zero T
		return zero, false
	}
	return m.pop(), true
}

// InsertTimed adds v, waiting for a free slot until deadline at the latest.
func (m *Monitor[T]) InsertTimed(ctx context.Context, v T, deadline time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.store.Full() {
		retry, err := m.waitUntil(ctx, &m.notFull, deadline)
		if !retry {
			return false, err
		}
	}
	m.push(v)
	return true, nil
}

// ExtractTimed removes the oldest element, waiting until deadline at the latest.
func (m *Monitor[T]) ExtractTimed(ctx context.Context, deadline time.Time) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.store.Empty() {
		retry, err := m.waitUntil(ctx, &m.notEmpty, deadline)
		if !retry {
			var zero T
			return zero, false, err
		}
	}
	return m.pop(), true, nil
}

// Len returns the number of buffered elements.
func (m *Monitor[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// Cap returns the fixed capacity.
func (m *Monitor[T]) Cap() int {
	return m.store.Cap()
}

// waitUntil performs one bounded suspension on q. The remaining time is
// computed here, right before suspending, because the caller's loop may come
// back after a wakeup that another goroutine consumed. retry is false when the
// caller must give up: err is nil on deadline expiry and non-nil on
// interruption. After the timer fires the caller re-checks its predicate once
// more, so a slot freed at the last moment is still taken.
func (m *Monitor[T]) waitUntil(ctx context.Context, q *waitQueue, deadline time.Time) (retry bool, err error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false, nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	switch werr := q.wait(ctx, &m.mu, timer.C); werr {
	case nil, errDeadline:
		return true, nil
	default:
		return false, errs.Interrupted(werr)
	}
}

// push stores v and wakes one waiting consumer. mu must be held and the store
// must have room.
func (m *Monitor[T]) push(v T) {
	if !m.store.Push(v) {
		panic("buffer: monitor push on full store")
	}
	m.notEmpty.signal()
}

// pop removes the oldest element and wakes one waiting producer. mu must be
// held and the store must be non-empty.
func (m *Monitor[T]) pop() T {
	v, ok := m.store.Pop()
	if !ok {
		panic("buffer: monitor pop on empty store")
	}
	m.notFull.signal()
	return v
}
