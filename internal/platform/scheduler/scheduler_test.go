package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualRunsTasksInDueOrder(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	order := []string{}
	m.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	m.AfterFunc(time.Second, func() { order = append(order, "a") })
	m.AfterFunc(time.Second, func() { order = append(order, "b") })

	m.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, epoch.Add(2*time.Second), m.Now())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, m.Pending())
}

func TestManualReportsTaskTimeWhileRunning(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(1500*time.Millisecond, func() { seen = m.Now() })
	m.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), seen)
}

func TestManualHonoursTasksScheduledByTasks(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	ran := 0
	m.AfterFunc(time.Second, func() {
		m.AfterFunc(time.Second, func() { ran++ })
		m.AfterFunc(5*time.Second, func() { ran += 10 })
	})
	m.Advance(3 * time.Second)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, m.Pending())
}

func TestManualEveryAndCancel(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	ticks := 0
	h := m.Every(time.Second, func() { ticks++ })

	m.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, ticks)

	m.Cancel(h)
	m.Advance(10 * time.Second)
	assert.Equal(t, 3, ticks)
	assert.Zero(t, m.Pending())
}

func TestManualTaskCanCancelItself(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	ticks := 0
	var h Handle
	h = m.Every(time.Second, func() {
		ticks++
		if ticks == 2 {
			m.Cancel(h)
		}
	})
	m.Advance(10 * time.Second)
	assert.Equal(t, 2, ticks)
}

func TestManualDoRunsInPlace(t *testing.T) {
	t.Parallel()
	m := NewManual(epoch)
	ran := false
	m.Do(func() { ran = true })
	assert.True(t, ran)
}

func TestLoopRunsAfterFunc(t *testing.T) {
	t.Parallel()
	l := NewLoop()
	t.Cleanup(l.Stop)

	done := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestLoopCancelPreventsRun(t *testing.T) {
	t.Parallel()
	l := NewLoop()
	t.Cleanup(l.Stop)

	var ran atomic.Bool
	h := l.AfterFunc(50*time.Millisecond, func() { ran.Store(true) })
	l.Cancel(h)
	time.Sleep(150 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestLoopEveryRepeatsUntilStopped(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	var ticks atomic.Int32
	l.Every(5*time.Millisecond, func() { ticks.Add(1) })
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	l.Stop()
	time.Sleep(20 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestLoopSerializesTasks(t *testing.T) {
	t.Parallel()
	l := NewLoop()
	t.Cleanup(l.Stop)

	var active, overlap atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go l.Do(func() {
			defer wg.Done()
			if active.Add(1) > 1 {
				overlap.Add(1)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		})
	}
	wg.Wait()
	assert.Zero(t, overlap.Load())
}
