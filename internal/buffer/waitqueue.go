package buffer

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

// errDeadline is returned by waitQueue.wait when the timer channel fired first.
var errDeadline = errors.New("deadline reached")

// waitQueue is a condition queue whose waits can be abandoned on context
// cancellation or timer expiry, which sync.Cond cannot do.
//
// Waiters are woken one at a time in arrival order. Every method must be
// called with the mutex that protects the associated predicate held.
type waitQueue struct {
	waiters list.List // of chan struct{}
}

// wait releases mu, suspends the caller and re-acquires mu before returning.
//
// It returns nil once signalled, ctx.Err() if ctx ends first, or errDeadline
// if expired fires first. A nil expired channel never fires. A signal that
// races with cancellation is never dropped: if it was delivered, wait reports
// the wakeup and the caller re-checks its predicate.
func (q *waitQueue) wait(ctx context.Context, mu *sync.Mutex, expired <-chan time.Time) error {
	ch := make(chan struct{}, 1)
	e := q.waiters.PushBack(ch)
	mu.Unlock()

	var err error
	select {
	case <-ch:
	case <-ctx.Done():
		err = ctx.Err()
	case <-expired:
		err = errDeadline
	}

	mu.Lock()
	if err == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	default:
	}
	q.waiters.Remove(e)
	return err
}

// signal wakes the longest-waiting goroutine, if any.
func (q *waitQueue) signal() {
	front := q.waiters.Front()
	if front == nil {
		return
	}
	q.waiters.Remove(front)
	front.Value.(chan struct{}) <- struct{}{}
}

// len returns the number of suspended goroutines.
func (q *waitQueue) len() int {
	return q.waiters.Len()
}
