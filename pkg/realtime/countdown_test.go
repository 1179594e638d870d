package realtime

import (
	"testing"
	"time"
)

func TestCountdown_NotStarted(t *testing.T) {
	c := Countdown{Duration: time.Minute}
	now := time.Now().UTC()
	if c.Active() || c.Expired(now) {
		t.Error("unstarted countdown should be neither active nor expired")
	}
	if c.Remaining(now) != time.Minute {
		t.Errorf("remaining %v, want full duration", c.Remaining(now))
	}
}

func TestCountdown_RemainingAndExpiry(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Countdown{Duration: 180 * time.Second}
	c.Start(start)

	if got := c.RemainingSeconds(start.Add(30*time.Second + 400*time.Millisecond)); got != 150 {
		t.Errorf("remaining %d s, want 150", got)
	}
	if c.Expired(c.Deadline()) {
		t.Error("countdown should not be expired exactly at the deadline")
	}
	after := c.Deadline().Add(time.Millisecond)
	if !c.Expired(after) {
		t.Error("countdown should be expired past the deadline")
	}
	if c.Remaining(after) != 0 {
		t.Errorf("remaining %v past the deadline, want 0", c.Remaining(after))
	}
}

func TestCountdown_NextTickStopsAtDeadline(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Countdown{Duration: 10 * time.Second, Started: start}
	if got := c.NextTick(start, time.Second); !got.Equal(start.Add(time.Second)) {
		t.Errorf("next %v, want one second later", got)
	}
	late := start.Add(9*time.Second + 500*time.Millisecond)
	want := c.Deadline().Add(time.Millisecond)
	if got := c.NextTick(late, time.Second); !got.Equal(want) {
		t.Errorf("next %v, want %v", got, want)
	}
}
