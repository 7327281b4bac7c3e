package scheduler

import (
	"sync"
	"time"

	"scormtrack/internal/platform/clock"
)

// Loop schedules tasks on the wall clock. Every task, and every function
// passed to Do, runs while holding the same lock.
type Loop struct {
	clock.SystemClock

	mu     sync.Mutex
	run    sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

func NewLoop() *Loop {
	return &Loop{timers: map[Handle]*time.Timer{}}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	h := l.next
	l.timers[h] = time.AfterFunc(d, func() {
		l.mu.Lock()
		_, live := l.timers[h]
		delete(l.timers, h)
		l.mu.Unlock()
		if live {
			l.Do(fn)
		}
	})
	return h
}

func (l *Loop) Every(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	h := l.next
	var tick func()
	tick = func() {
		l.mu.Lock()
		_, live := l.timers[h]
		l.mu.Unlock()
		if !live {
			return
		}
		l.Do(fn)
		l.mu.Lock()
		if t, ok := l.timers[h]; ok {
			t.Reset(d)
		}
		l.mu.Unlock()
	}
	l.timers[h] = time.AfterFunc(d, tick)
	return h
}

func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[h]; ok {
		t.Stop()
		delete(l.timers, h)
	}
}

func (l *Loop) Do(fn func()) {
	l.run.Lock()
	defer l.run.Unlock()
	fn()
}

// Stop cancels every outstanding timer.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for h, t := range l.timers {
		t.Stop()
		delete(l.timers, h)
	}
}
