package scanner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces provider calls. Wait blocks until the next call may start;
// Done marks the end of a call.
type Pacer interface {
	Wait(ctx context.Context) error
	Done()
}

// RatePacer keeps at least interval between the end of one provider call and
// the start of the next, and never lets calls start more often than once per
// interval. A single instance is shared by all scans so concurrent operators
// draw from the same budget.
type RatePacer struct {
	interval time.Duration
	limiter  *rate.Limiter

	mu       sync.Mutex
	lastDone time.Time
}

func NewRatePacer(interval time.Duration) *RatePacer {
	if interval <= 0 {
		return &RatePacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RatePacer{interval: interval, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	next := p.lastDone.Add(p.interval)
	p.mu.Unlock()
	if d := time.Until(next); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return p.limiter.Wait(ctx)
}

func (p *RatePacer) Done() {
	p.mu.Lock()
	p.lastDone = time.Now()
	p.mu.Unlock()
}

// NoPacer never waits.
type NoPacer struct{}

func (NoPacer) Wait(context.Context) error { return nil }
func (NoPacer) Done()                      {}
