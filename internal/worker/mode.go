// Package worker runs producers and consumers against a shared bounded buffer
// and audits what went through it.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jittakal/boundedbuffer/internal/config/dto"
	"github.com/jittakal/boundedbuffer/internal/errors"
)

// Mode selects which flavour of buffer operation workers use.
type Mode string

const (
	// ModeBlocking uses Insert and Extract.
	ModeBlocking Mode = "blocking"
	// ModeTry uses TryInsert and TryExtract, backing off between attempts.
	ModeTry Mode = "try"
	// ModeTimed uses InsertTimed and ExtractTimed with a relative timeout.
	ModeTimed Mode = "timed"
)

// Worker roles, used as metric and log labels.
const (
	RoleProducer = "producer"
	RoleConsumer = "consumer"
)

// Retry reasons.
const (
	reasonFull    = "full"
	reasonEmpty   = "empty"
	reasonTimeout = "timeout"
)

// ParseMode parses a mode name, ignoring case and surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBlocking, ModeTry, ModeTimed:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownMode, s)
	}
}

// ValidateWorkload checks the mode-dependent workload settings. Timed mode
// needs a positive timeout, otherwise every timed call expires at once and
// workers spin.
func ValidateWorkload(cfg dto.WorkloadConfig) error {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	if mode == ModeTimed && cfg.TimeoutMS < 1 {
		return fmt.Errorf("%w, got %d", errors.ErrMissingTimeout, cfg.TimeoutMS)
	}
	return nil
}

// Options tune how a worker drives the buffer.
type Options struct {
	Mode         Mode
	Timeout      time.Duration
	RetryBackoff time.Duration
	Period       time.Duration
}

// sleep pauses for d or until ctx is done. A non-positive d returns at once.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.Interrupted(ctx.Err())
	}
}
