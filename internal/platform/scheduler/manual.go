package scheduler

import (
	"sort"
	"time"
)

// Manual is a virtual-time scheduler. Nothing runs until Advance moves the
// clock past a task's due time.
type Manual struct {
	now   time.Time
	next  Handle
	seq   uint64
	tasks map[Handle]*task
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start, tasks: map[Handle]*task{}}
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.next++
	m.seq++
	m.tasks[m.next] = &task{handle: m.next, at: m.now.Add(d), interval: interval, seq: m.seq, fn: fn}
	return m.next
}

func (m *Manual) Cancel(h Handle) {
	delete(m.tasks, h)
}

func (m *Manual) Do(fn func()) { fn() }

// Pending reports how many tasks are still scheduled.
func (m *Manual) Pending() int { return len(m.tasks) }

// Advance moves virtual time forward by d, running every task that becomes
// due in chronological order. Tasks scheduled by running tasks are honoured
// when they fall inside the same window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.interval > 0 {
			m.seq++
			t.at = t.at.Add(t.interval)
			t.seq = m.seq
		} else {
			delete(m.tasks, t.handle)
		}
		t.fn()
	}
	m.now = target
}

func (m *Manual) nextDue(limit time.Time) *task {
	due := make([]*task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.at.After(limit) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return earlier(due[i], due[j]) })
	return due[0]
}
