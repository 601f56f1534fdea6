package buffer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	errs "github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/internal/ring"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// Ensure implementation satisfies interface at compile time.
var _ buffer.Buffer[any] = (*Semaphore[any])(nil)

// Semaphore is a bounded buffer whose slot accounting is carried by two
// counting semaphores. emptySlots holds one permit per known-free slot and
// fullSlots one permit per known-stored element. A permit is always obtained
// before mu is taken, so mu is never held across a potentially unbounded wait.
type Semaphore[T any] struct {
	mu    sync.Mutex
	store *ring.Store[T]

	emptySlots *semaphore.Weighted
	fullSlots  *semaphore.Weighted
}

// NewSemaphore creates a semaphore-based buffer. It panics if capacity < 1; use
// New for validated construction.
func NewSemaphore[T any](capacity int) *Semaphore[T] {
	store := ring.New[T](capacity)
	n := int64(capacity)

	// Weighted counts permits handed out, not permits available; fullSlots
	// starts at zero availability by holding its whole weight up front.
	fullSlots := semaphore.NewWeighted(n)
	if !fullSlots.TryAcquire(n) {
		panic("buffer: cannot initialise fullSlots")
	}

	return &Semaphore[T]{
		store:      store,
		emptySlots: semaphore.NewWeighted(n),
		fullSlots:  fullSlots,
	}
}

// Insert adds v, blocking while no empty slot permit is available.
func (s *Semaphore[T]) Insert(ctx context.Context, v T) error {
	if !s.emptySlots.TryAcquire(1) {
		if err := s.emptySlots.Acquire(ctx, 1); err != nil {
			return errs.Interrupted(err)
		}
	}
	s.put(v)
	return nil
}

// Extract removes the oldest element, blocking while no full slot permit is
// available.
func (s *Semaphore[T]) Extract(ctx context.Context) (T, error) {
	if !s.fullSlots.TryAcquire(1) {
		if err := s.fullSlots.Acquire(ctx, 1); err != nil {
			var zero T
			return zero, errs.Interrupted(err)
		}
	}
	return s.take(), nil
}

// TryInsert adds v if an empty slot permit is available right now.
func (s *Semaphore[T]) TryInsert(v T) bool {
	if !s.emptySlots.TryAcquire(1) {
		return false
	}
	s.put(v)
	return true
}

// TryExtract removes the oldest element if a full slot permit is available
// right now.
func (s *Semaphore[T]) TryExtract() (T, bool) {
	if !s.fullSlots.TryAcquire(1) {
		var zero T
		return zero, false
	}
	return s.take(), true
}

// InsertTimed adds v, waiting for an empty slot permit until deadline at the
// latest.
func (s *Semaphore[T]) InsertTimed(ctx context.Context, v T, deadline time.Time) (bool, error) {
	ok, err := acquireBefore(ctx, s.emptySlots, deadline)
	if !ok {
		return false, err
	}
	s.put(v)
	return true, nil
}

// ExtractTimed removes the oldest element, waiting for a full slot permit
// until deadline at the latest.
func (s *Semaphore[T]) ExtractTimed(ctx context.Context, deadline time.Time) (T, bool, error) {
	ok, err := acquireBefore(ctx, s.fullSlots, deadline)
	if !ok {
		var zero T
		return zero, false, err
	}
	return s.take(), true, nil
}

// Len returns the number of buffered elements.
func (s *Semaphore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Cap returns the fixed capacity.
func (s *Semaphore[T]) Cap() int {
	return s.store.Cap()
}

// put runs the critical section for a transfer whose emptySlots permit is
// already held, then publishes the element through fullSlots.
func (s *Semaphore[T]) put(v T) {
	s.mu.Lock()
	ok := s.store.Push(v)
	s.mu.Unlock()
	if !ok {
		panic("buffer: emptySlots permit held but store is full")
	}
	s.fullSlots.Release(1)
}

// take runs the critical section for a transfer whose fullSlots permit is
// already held, then returns the slot through emptySlots.
func (s *Semaphore[T]) take() T {
	s.mu.Lock()
	v, ok := s.store.Pop()
	s.mu.Unlock()
	if !ok {
		panic("buffer: fullSlots permit held but store is empty")
	}
	s.emptySlots.Release(1)
	return v
}

// acquireBefore takes one permit from sem, giving up at deadline. A deadline
// that has already passed degrades to a single non-blocking attempt.
//
// If ctx ends while waiting the error wraps ErrInterrupted. A permit granted
// concurrently with cancellation is handed back by Weighted itself, so no
// permit leaks on either path.
func acquireBefore(ctx context.Context, sem *semaphore.Weighted, deadline time.Time) (bool, error) {
	if sem.TryAcquire(1) {
		return true, nil
	}
	if !time.Now().Before(deadline) {
		return false, nil
	}

	wctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if err := sem.Acquire(wctx, 1); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return false, errs.Interrupted(cerr)
		}
		return false, nil
	}
	return true, nil
}
