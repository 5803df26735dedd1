package display

import "time"

// Countdown is a one-shot timer that the multiplexer polls instead of waiting on.
type Countdown interface {
	// Start (re)arms the countdown to expire after d.
	Start(d time.Duration)
	// Poll reports whether the countdown has expired.  It never blocks.
	Poll() bool
}

// TimerCountdown is a Countdown backed by the host's monotonic clock.  The zero value has already
// expired.
type TimerCountdown struct {
	deadline time.Time
	now      func() time.Time
}

// NewTimerCountdown returns an expired TimerCountdown that reads the time from now, or from
// time.Now if now is nil.
func NewTimerCountdown(now func() time.Time) *TimerCountdown {
	if now == nil {
		now = time.Now
	}
	return &TimerCountdown{now: now}
}

func (c *TimerCountdown) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *TimerCountdown) Start(d time.Duration) { c.deadline = c.clock().Add(d) }

func (c *TimerCountdown) Poll() bool { return !c.clock().Before(c.deadline) }

// Remaining returns how long until the countdown expires, or 0 if it already has.
func (c *TimerCountdown) Remaining() time.Duration {
	if d := c.deadline.Sub(c.clock()); d > 0 {
		return d
	}
	return 0
}
