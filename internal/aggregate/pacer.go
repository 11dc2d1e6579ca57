package aggregate

import (
	"context"
	"time"
)

// Pacer enforces a fixed pause between the end of one upstream call and the
// start of the next. The first Wait returns immediately. A zero delay never
// blocks.
type Pacer struct {
	delay time.Duration
	last  time.Time // end of the previous call, zero before the first
}

// NewPacer returns a pacer for a fixed inter-call delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Wait blocks until delay has passed since the last Done, or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.delay <= 0 || p.last.IsZero() {
		return nil
	}
	remaining := time.Until(p.last.Add(p.delay))
	if remaining <= 0 {
		return nil
	}

	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done marks the end of a call, successful or not.
func (p *Pacer) Done() {
	p.last = time.Now()
}
