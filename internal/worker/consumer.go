package worker

import (
	"context"
	"sync/atomic"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"

	"github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/internal/observability"
	"github.com/jittakal/boundedbuffer/internal/validator"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
	"github.com/jittakal/boundedbuffer/pkg/event"
)

// Consumer extracts items from the buffer until the shared work counter is
// exhausted.
type Consumer struct {
	id        int
	remaining *atomic.Int64
	buf       buffer.Buffer[cloudevents.Event]
	opts      Options
	validator *validator.ItemValidator
	ledger    *Ledger
	metrics   *observability.Metrics
	logger    *zap.Logger

	invalid atomic.Int64
}

// NewConsumer creates a consumer. remaining holds the number of items not yet
// claimed by any consumer and is shared by all consumers of a run.
func NewConsumer(
	id int,
	remaining *atomic.Int64,
	buf buffer.Buffer[cloudevents.Event],
	opts Options,
	ledger *Ledger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Consumer {
	return &Consumer{
		id:        id,
		remaining: remaining,
		buf:       buf,
		opts:      opts,
		validator: validator.NewItemValidator(),
		ledger:    ledger,
		metrics:   metrics,
		logger:    logger.With(zap.String("role", RoleConsumer), zap.Int("workerId", id)),
	}
}

// Run claims and extracts items until none are left to claim. Each claim is
// matched by exactly one extraction, so consumers never wait for an item that
// will not be produced.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Debug("Consumer started")

	consumed := 0
	for c.remaining.Add(-1) >= 0 {
		e, err := c.extract(ctx)
		if err != nil {
			return &errors.WorkerError{Role: RoleConsumer, WorkerID: c.id, Err: err}
		}
		c.metrics.IncWorkerItems(RoleConsumer)
		consumed++

		c.handle(e)

		if err := sleep(ctx, c.opts.Period); err != nil {
			return &errors.WorkerError{Role: RoleConsumer, WorkerID: c.id, Err: err}
		}
	}

	c.logger.Debug("Consumer finished", zap.Int("consumed", consumed))
	return nil
}

// Invalid returns the number of extracted items that failed validation.
func (c *Consumer) Invalid() int64 {
	return c.invalid.Load()
}

func (c *Consumer) handle(e cloudevents.Event) {
	tag, err := c.validator.Validate(e)
	if err != nil {
		c.invalid.Add(1)
		c.metrics.IncValidationFailures()
		c.logger.Warn("Invalid item", zap.String("itemId", e.ID()), zap.Error(err))

		// An invalid item still left the buffer and must be accounted for.
		if tag, err = event.TagOf(e); err != nil {
			c.ledger.RecordUnidentified(e.ID())
			return
		}
	}

	c.ledger.RecordExtract(event.Record{
		Event:       e,
		Tag:         tag,
		ConsumerID:  c.id,
		ExtractedAt: time.Now(),
	})

	c.logger.Debug("Item consumed",
		zap.String("itemId", e.ID()),
		zap.String("tag", tag.String()),
	)
}

func (c *Consumer) extract(ctx context.Context) (cloudevents.Event, error) {
	switch c.opts.Mode {
	case ModeTry:
		for {
			if e, ok := c.buf.TryExtract(); ok {
				return e, nil
			}
			c.metrics.IncWorkerRetries(RoleConsumer, reasonEmpty)
			if err := sleep(ctx, c.opts.RetryBackoff); err != nil {
				return cloudevents.Event{}, err
			}
			if err := ctx.Err(); err != nil {
				return cloudevents.Event{}, errors.Interrupted(err)
			}
		}

	case ModeTimed:
		for {
			e, ok, err := c.buf.ExtractTimed(ctx, time.Now().Add(c.opts.Timeout))
			if err != nil {
				return cloudevents.Event{}, err
			}
			if ok {
				return e, nil
			}
			c.metrics.IncWorkerRetries(RoleConsumer, reasonTimeout)
			if err := ctx.Err(); err != nil {
				return cloudevents.Event{}, errors.Interrupted(err)
			}
		}

	default:
		return c.buf.Extract(ctx)
	}
}
