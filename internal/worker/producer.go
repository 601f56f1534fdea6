package worker

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"

	"github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/internal/generator"
	"github.com/jittakal/boundedbuffer/internal/observability"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
	"github.com/jittakal/boundedbuffer/pkg/event"
)

// Producer inserts a fixed number of generated items into the buffer.
type Producer struct {
	id      int
	items   int
	buf     buffer.Buffer[cloudevents.Event]
	gen     *generator.Generator
	opts    Options
	ledger  *Ledger
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewProducer creates a producer with its own item generator.
func NewProducer(
	id, items int,
	buf buffer.Buffer[cloudevents.Event],
	opts Options,
	ledger *Ledger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Producer {
	logger = logger.With(zap.String("role", RoleProducer), zap.Int("workerId", id))
	return &Producer{
		id:      id,
		items:   items,
		buf:     buf,
		gen:     generator.NewGenerator(id, logger),
		opts:    opts,
		ledger:  ledger,
		metrics: metrics,
		logger:  logger,
	}
}

// Run produces all items. It returns early with a WorkerError wrapping
// ErrInterrupted when ctx ends.
func (p *Producer) Run(ctx context.Context) error {
	p.logger.Debug("Producer started", zap.Int("items", p.items))

	for i := 0; i < p.items; i++ {
		e := p.gen.Next()
		tag, err := event.TagOf(e)
		if err != nil {
			return p.fail(err)
		}

		if err := p.insert(ctx, e); err != nil {
			return p.fail(err)
		}
		p.ledger.RecordInsert(tag, e.ID())
		p.metrics.IncWorkerItems(RoleProducer)

		p.logger.Debug("Item produced",
			zap.String("itemId", e.ID()),
			zap.Int("sequence", tag.Sequence),
		)

		if i < p.items-1 {
			if err := sleep(ctx, p.opts.Period); err != nil {
				return p.fail(err)
			}
		}
	}

	p.logger.Debug("Producer finished")
	return nil
}

func (p *Producer) insert(ctx context.Context, e cloudevents.Event) error {
	switch p.opts.Mode {
	case ModeTry:
		for !p.buf.TryInsert(e) {
			p.metrics.IncWorkerRetries(RoleProducer, reasonFull)
			if err := sleep(ctx, p.opts.RetryBackoff); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return errors.Interrupted(err)
			}
		}
		return nil

	case ModeTimed:
		for {
			ok, err := p.buf.InsertTimed(ctx, e, time.Now().Add(p.opts.Timeout))
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			p.metrics.IncWorkerRetries(RoleProducer, reasonTimeout)
			if err := ctx.Err(); err != nil {
				return errors.Interrupted(err)
			}
		}

	default:
		return p.buf.Insert(ctx, e)
	}
}

func (p *Producer) fail(err error) error {
	return &errors.WorkerError{Role: RoleProducer, WorkerID: p.id, Err: err}
}
