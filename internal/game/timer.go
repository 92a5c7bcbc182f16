package game

import (
	"fmt"
	"time"
)

// StartConditions are the inputs deciding whether the run clock may begin.
type StartConditions struct {
	// FirstUnlocked: the player is viewing the first-sequence waypoint and it
	// is unlocked.
	FirstUnlocked bool
	// PresentOrCompleted: the geofence reports presence at the first
	// waypoint, or the player already solved it.
	PresentOrCompleted bool
	// TrailFinished: the trail is already fully solved this session.
	TrailFinished bool
	// CompletedBefore: a completion record for (player, trail) already
	// exists. The timer must never start again once a time is on the board.
	CompletedBefore bool
}

// ShouldStart reports whether the run timer may begin. The clock starts when
// the player actually begins the trail, not at account creation.
func ShouldStart(c StartConditions) bool {
	return c.FirstUnlocked && c.PresentOrCompleted && !c.TrailFinished && !c.CompletedBefore
}

// RunTimer is a client-observed elapsed-time counter. It is display state,
// not a source of truth: only the final elapsed value is ever persisted, and
// the store discards it if a completion already exists.
type RunTimer struct {
	startedAt time.Time
	final     time.Duration
	running   bool
	stopped   bool
}

// Start begins the timer at now. Starting an already-started timer is a
// no-op, so a re-render of the first waypoint cannot reset the clock.
func (t *RunTimer) Start(now time.Time) {
	if t.running || t.stopped {
		return
	}
	t.startedAt = now
	t.running = true
}

// Stop freezes the timer at now and returns the final elapsed time.
func (t *RunTimer) Stop(now time.Time) time.Duration {
	if t.running {
		t.final = now.Sub(t.startedAt)
		t.running = false
		t.stopped = true
	}
	return t.final
}

// Elapsed returns the running time at now, or the frozen final value.
func (t *RunTimer) Elapsed(now time.Time) time.Duration {
	if t.running {
		return now.Sub(t.startedAt)
	}
	return t.final
}

// Running reports whether the clock is ticking.
func (t *RunTimer) Running() bool { return t.running }

// FormatElapsed renders a duration as h:mm:ss, or mm:ss under an hour.
func FormatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
