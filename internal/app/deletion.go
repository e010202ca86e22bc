package app

import (
	"sync/atomic"
	"time"
)

// deletionTimer is the handle of a room's grace-period deletion.
// A room owns at most one at a time; the registry replaces its pointer
// under its lock whenever it schedules or cancels one.
type deletionTimer struct {
	timer    *time.Timer
	canceled atomic.Bool
}

func newDeletionTimer(d time.Duration, fire func(*deletionTimer)) *deletionTimer {
	t := &deletionTimer{}
	t.timer = time.AfterFunc(d, func() { fire(t) })
	return t
}

// Cancel stops the timer. It reports whether this call did the cancelling;
// cancelling twice, or after the timer fired, is a no-op.
func (t *deletionTimer) Cancel() bool {
	if t == nil || t.canceled.Swap(true) {
		return false
	}
	t.timer.Stop()
	return true
}

func (t *deletionTimer) Canceled() bool {
	return t.canceled.Load()
}
