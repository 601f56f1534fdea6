// Package buffer defines the bounded buffer contract shared by producers and
// consumers.
//
// A bounded buffer is a fixed-capacity FIFO queue. Every implementation offers
// three flavours of each transfer: blocking, non-blocking ("try") and timed,
// where the timed flavour takes an absolute deadline. All implementations must
// be safe for concurrent use and behave identically from the caller's point of
// view.
package buffer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Buffer is a thread-safe bounded FIFO buffer.
//
// Full and empty conditions and expired deadlines are ordinary results, never
// errors. The only error a transfer returns is an interruption: the caller's
// context ended while the call was suspended. An interrupted call leaves the
// buffer unchanged.
type Buffer[T any] interface {
	// Insert adds v, blocking while the buffer is full.
	Insert(ctx context.Context, v T) error

	// Extract removes the oldest element, blocking while the buffer is empty.
	Extract(ctx context.Context) (T, error)

	// TryInsert adds v if a slot is free right now.
	TryInsert(v T) bool

	// TryExtract removes the oldest element if one is present right now.
	TryExtract() (T, bool)

	// InsertTimed adds v, waiting no later than deadline for a free slot.
	// A deadline at or before the current time makes it equivalent to TryInsert.
	InsertTimed(ctx context.Context, v T, deadline time.Time) (bool, error)

	// ExtractTimed removes the oldest element, waiting no later than deadline.
	// A deadline at or before the current time makes it equivalent to TryExtract.
	ExtractTimed(ctx context.Context, deadline time.Time) (T, bool, error)

	// Len returns the number of buffered elements at the time of the call.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int
}

// Strategy selects the synchronization scheme behind a Buffer.
type Strategy string

const (
	// StrategyMonitor guards the store with a mutex and two condition queues.
	StrategyMonitor Strategy = "monitor"
	// StrategySemaphore gates a short critical section with two counting semaphores.
	StrategySemaphore Strategy = "semaphore"
)

// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
var ErrUnknownStrategy = errors.New("unknown buffer strategy")

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyMonitor, StrategySemaphore}
}

// ParseStrategy converts a configuration value into a Strategy.
// Matching is case-insensitive; "nat" and "cond" are accepted aliases for the
// monitor strategy, "sem" for the semaphore strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monitor", "cond", "nat":
		return StrategyMonitor, nil
	case "semaphore", "sem":
		return StrategySemaphore, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: monitor, semaphore)", ErrUnknownStrategy, s)
	}
}

// Outcome classifies the result of a transfer.
type Outcome int

const (
	// Completed means the element was transferred.
	Completed Outcome = iota
	// TimedOut means the buffer stayed full (or empty) until the deadline or,
	// for try variants, at the time of the call.
	TimedOut
	// Cancelled means the caller's context ended while waiting.
	Cancelled
)

// OutcomeOf maps a (ok, err) pair returned by a Buffer method to an Outcome.
func OutcomeOf(ok bool, err error) Outcome {
	switch {
	case err != nil:
		return Cancelled
	case ok:
		return Completed
	default:
		return TimedOut
	}
}

// String returns the lowercase outcome name, suitable as a metric label.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
