// Package scheduler provides the cooperative task queue every timer-driven
// part of the tracking engine runs on. Tasks never run concurrently with each
// other, which mirrors the run-to-completion model of a single content frame.
package scheduler

import (
	"time"

	"scormtrack/internal/platform/clock"
)

// Handle identifies a scheduled task so it can be cancelled.
type Handle uint64

// Scheduler runs one-shot and repeating tasks on a single logical thread.
type Scheduler interface {
	clock.Clock
	AfterFunc(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle
	Cancel(h Handle)
	// Do runs fn inside the scheduler's serial context.
	Do(fn func())
}

type task struct {
	handle   Handle
	at       time.Time
	interval time.Duration
	seq      uint64
	fn       func()
}

func earlier(a, b *task) bool {
	if a.at.Equal(b.at) {
		return a.seq < b.seq
	}
	return a.at.Before(b.at)
}
