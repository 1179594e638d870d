package realtime

import "time"

// Countdown is a single deadline: Duration after Started. A zero Started
// means the countdown has not begun.
type Countdown struct {
	Duration time.Duration
	Started  time.Time
}

// Start begins the countdown at now.
func (c *Countdown) Start(now time.Time) {
	c.Started = now
}

func (c Countdown) Active() bool { return !c.Started.IsZero() }

// Deadline is the instant the countdown runs out.
func (c Countdown) Deadline() time.Time {
	return c.Started.Add(c.Duration)
}

// Remaining is the time left, never negative.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if !c.Active() {
		return c.Duration
	}
	left := c.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSeconds rounds the time left to whole seconds.
func (c Countdown) RemainingSeconds(now time.Time) int {
	return int(c.Remaining(now).Round(time.Second) / time.Second)
}

// Expired reports whether now is strictly past the deadline.
func (c Countdown) Expired(now time.Time) bool {
	return c.Active() && now.After(c.Deadline())
}

// NextTick returns the next wake-up: one step from now, but never later
// than just past the deadline.
func (c Countdown) NextTick(now time.Time, step time.Duration) time.Time {
	next := now.Add(step)
	if end := c.Deadline().Add(time.Millisecond); c.Active() && next.After(end) {
		return end
	}
	return next
}
