package loop

import (
	"context"
	"time"
)

// Clock is the loop's time source. Deadlines are computed from Now, which
// must be monotonic, and waited for with Sleep.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock uses the runtime's monotonic clock.
type RealClock struct{}

// Now returns time.Now(), which carries a monotonic reading.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep waits on a timer.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FakeClock advances only when slept on.
type FakeClock struct {
	now time.Time

	// Sleeps contains every requested sleep in order.
	Sleeps []time.Duration

	// OnSleep, if set, is called after each sleep.
	OnSleep func(d time.Duration)
}

// NewFakeClock creates a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	return c.now
}

// Sleep advances the fake time by d.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.Sleeps = append(c.Sleeps, d)
	if c.OnSleep != nil {
		c.OnSleep(d)
	}
	return ctx.Err()
}

// Advance moves the fake time forward without recording a sleep, to
// simulate time spent working inside a cycle.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
