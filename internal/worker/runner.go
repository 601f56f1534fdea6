package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jittakal/boundedbuffer/internal/config/dto"
	"github.com/jittakal/boundedbuffer/internal/observability"
	"github.com/jittakal/boundedbuffer/internal/server"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// Runner states.
const (
	stateIdle int32 = iota
	stateRunning
	stateFinished
	stateFailed
)

var stateNames = map[int32]string{
	stateIdle:     "idle",
	stateRunning:  "running",
	stateFinished: "finished",
	stateFailed:   "failed",
}

// Ensure Runner implements server.HealthChecker.
var _ server.HealthChecker = (*Runner)(nil)

// Summary describes a completed run.
type Summary struct {
	Produced int
	Consumed int
	Invalid  int64
	Elapsed  time.Duration
}

// Runner starts producers and consumers against one shared buffer.
type Runner struct {
	cfg     dto.WorkloadConfig
	mode    Mode
	buf     buffer.Buffer[cloudevents.Event]
	ledger  *Ledger
	metrics *observability.Metrics
	logger  *zap.Logger

	state atomic.Int32
}

// NewRunner creates a runner for the workload.
func NewRunner(
	cfg dto.WorkloadConfig,
	buf buffer.Buffer[cloudevents.Event],
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateWorkload(cfg); err != nil {
		return nil, err
	}
	mode, _ := ParseMode(cfg.Mode)

	return &Runner{
		cfg:     cfg,
		mode:    mode,
		buf:     buf,
		ledger:  NewLedger(),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Run starts all workers, waits for the producers and then for the
// consumers, and audits the ledger. The first worker failure cancels the
// others and is returned. When every worker finished, the audit result is
// returned: nil or an *errors.AuditError.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if !r.state.CompareAndSwap(stateIdle, stateRunning) {
		return Summary{}, fmt.Errorf("runner already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	r.logger.Info("Starting run",
		zap.Int("producers", r.cfg.Producers),
		zap.Int("consumers", r.cfg.Consumers),
		zap.Int("itemsPerProducer", r.cfg.ItemsPerProducer),
		zap.String("mode", string(r.mode)),
		zap.Int("capacity", r.buf.Cap()),
	)

	var remaining atomic.Int64
	remaining.Store(int64(r.cfg.TotalItems()))

	var producers, consumers errgroup.Group
	workers := make([]*Consumer, 0, r.cfg.Consumers)

	for i := 0; i < r.cfg.Consumers; i++ {
		c := NewConsumer(i, &remaining, r.buf, r.options(r.cfg.ConsumerPeriod()), r.ledger, r.metrics, r.logger)
		workers = append(workers, c)
		consumers.Go(cancelOnError(cancel, func() error { return c.Run(runCtx) }))
	}
	for i := 0; i < r.cfg.Producers; i++ {
		p := NewProducer(i, r.cfg.ItemsPerProducer, r.buf, r.options(r.cfg.ProducerPeriod()), r.ledger, r.metrics, r.logger)
		producers.Go(cancelOnError(cancel, func() error { return p.Run(runCtx) }))
	}

	producerErr := producers.Wait()
	r.logger.Info("Producers finished", zap.Duration("elapsed", time.Since(start)))
	consumerErr := consumers.Wait()

	inserted, extracted := r.ledger.Counts()
	summary := Summary{
		Produced: inserted,
		Consumed: extracted,
		Elapsed:  time.Since(start),
	}
	for _, c := range workers {
		summary.Invalid += c.Invalid()
	}

	err := producerErr
	if err == nil {
		err = consumerErr
	}
	if err == nil {
		err = r.ledger.Verify()
	}

	if err != nil {
		r.state.Store(stateFailed)
		r.logger.Error("Run failed", zap.Error(err))
		return summary, err
	}

	r.state.Store(stateFinished)
	r.logger.Info("Run finished",
		zap.Int("produced", summary.Produced),
		zap.Int("consumed", summary.Consumed),
		zap.Int64("invalid", summary.Invalid),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (r *Runner) options(period time.Duration) Options {
	return Options{
		Mode:         r.mode,
		Timeout:      r.cfg.Timeout(),
		RetryBackoff: r.cfg.RetryBackoff(),
		Period:       period,
	}
}

func cancelOnError(cancel context.CancelFunc, fn func() error) func() error {
	return func() error {
		err := fn()
		if err != nil {
			cancel()
		}
		return err
	}
}

// Liveness reports whether the process is alive.
func (r *Runner) Liveness() bool {
	return true
}

// Readiness reports whether a run is in progress.
func (r *Runner) Readiness(ctx context.Context) bool {
	return r.state.Load() == stateRunning
}

// IsHealthy reports whether the runner has not failed.
func (r *Runner) IsHealthy() bool {
	return r.state.Load() != stateFailed
}

// GetStatus returns the runner state and progress counters.
func (r *Runner) GetStatus() map[string]string {
	inserted, extracted := r.ledger.Counts()
	return map[string]string{
		"state":     stateNames[r.state.Load()],
		"mode":      string(r.mode),
		"produced":  strconv.Itoa(inserted),
		"consumed":  strconv.Itoa(extracted),
		"occupancy": strconv.Itoa(r.buf.Len()),
		"capacity":  strconv.Itoa(r.buf.Cap()),
	}
}
