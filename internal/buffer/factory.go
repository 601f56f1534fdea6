package buffer

import (
	"fmt"

	errs "github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// New creates a bounded buffer of the given capacity backed by strategy.
// The returned buffer is meant to be created once and shared by every
// producer and consumer.
func New[T any](capacity int, strategy buffer.Strategy) (buffer.Buffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", errs.ErrInvalidCapacity, capacity)
	}

	switch strategy {
	case buffer.StrategyMonitor:
		return NewMonitor[T](capacity), nil
	case buffer.StrategySemaphore:
		return NewSemaphore[T](capacity), nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownStrategy, strategy)
	}
}
