package steam

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces successive requests of one kind by a fixed interval. The
// first Wait returns immediately; each later Wait blocks until the interval
// has passed since the previous one returned.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

// NewPacer returns a pacer; a non-positive interval disables waiting.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, now: time.Now}
}

// Wait blocks until the next request may be issued or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval <= 0 {
		return ctx.Err()
	}
	if !p.next.IsZero() {
		if err := SleepWithContext(ctx, p.next.Sub(p.now())); err != nil {
			return err
		}
	}
	p.next = p.now().Add(p.interval)
	return nil
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
