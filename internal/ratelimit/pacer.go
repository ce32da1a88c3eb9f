package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between consecutive calls.
type Pacer struct {
	limiter  *rate.Limiter
	name     string
	interval time.Duration
}

// NewPacer creates a pacer allowing one call per interval.
// A non-positive interval disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		name:     name,
		interval: interval,
	}
}

// Wait blocks until the next call may proceed.
// Returns an error if the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait for %s: %w", p.name, err)
	}
	return nil
}

// Interval returns the configured minimum interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Name returns the name of this pacer.
func (p *Pacer) Name() string {
	return p.name
}
