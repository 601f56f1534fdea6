package observability

import (
	"context"
	"time"

	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// Operation labels.
const (
	OpInsert        = "insert"
	OpExtract       = "extract"
	OpTryInsert     = "try_insert"
	OpTryExtract    = "try_extract"
	OpInsertTimed   = "insert_timed"
	OpExtractTimed  = "extract_timed"
	outcomeRejected = "rejected"
)

// instrumented records metrics around every call of the wrapped buffer.
type instrumented[T any] struct {
	next     buffer.Buffer[T]
	strategy string
	metrics  *Metrics
}

// Ensure instrumented implements buffer.Buffer.
var _ buffer.Buffer[int] = (*instrumented[int])(nil)

// Instrument wraps b so that each operation updates the operation counter,
// the duration histogram and the occupancy gauge. The wrapper does not change
// the behavior of b.
func Instrument[T any](b buffer.Buffer[T], strategy buffer.Strategy, metrics *Metrics) buffer.Buffer[T] {
	return &instrumented[T]{next: b, strategy: string(strategy), metrics: metrics}
}

func (i *instrumented[T]) Insert(ctx context.Context, v T) error {
	start := time.Now()
	err := i.next.Insert(ctx, v)
	i.observe(OpInsert, start, buffer.OutcomeOf(err == nil, err).String())
	return err
}

func (i *instrumented[T]) Extract(ctx context.Context) (T, error) {
	start := time.Now()
	v, err := i.next.Extract(ctx)
	i.observe(OpExtract, start, buffer.OutcomeOf(err == nil, err).String())
	return v, err
}

func (i *instrumented[T]) TryInsert(v T) bool {
	start := time.Now()
	ok := i.next.TryInsert(v)
	i.observe(OpTryInsert, start, tryOutcome(ok))
	return ok
}

func (i *instrumented[T]) TryExtract() (T, bool) {
	start := time.Now()
	v, ok := i.next.TryExtract()
	i.observe(OpTryExtract, start, tryOutcome(ok))
	return v, ok
}

func (i *instrumented[T]) InsertTimed(ctx context.Context, v T, deadline time.Time) (bool, error) {
	start := time.Now()
	ok, err := i.next.InsertTimed(ctx, v, deadline)
	i.observe(OpInsertTimed, start, buffer.OutcomeOf(ok, err).String())
	return ok, err
}

func (i *instrumented[T]) ExtractTimed(ctx context.Context, deadline time.Time) (T, bool, error) {
	start := time.Now()
	v, ok, err := i.next.ExtractTimed(ctx, deadline)
	i.observe(OpExtractTimed, start, buffer.OutcomeOf(ok, err).String())
	return v, ok, err
}

func (i *instrumented[T]) Len() int {
	return i.next.Len()
}

func (i *instrumented[T]) Cap() int {
	return i.next.Cap()
}

func (i *instrumented[T]) observe(op string, start time.Time, outcome string) {
	i.metrics.OperationDuration.WithLabelValues(i.strategy, op).Observe(time.Since(start).Seconds())
	i.metrics.Operations.WithLabelValues(i.strategy, op, outcome).Inc()
	i.metrics.Occupancy.WithLabelValues(i.strategy).Set(float64(i.next.Len()))
}

func tryOutcome(ok bool) string {
	if ok {
		return buffer.Completed.String()
	}
	return outcomeRejected
}
