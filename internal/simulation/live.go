package simulation

import (
	"context"
	"fmt"

	"scormtrack/internal/modules/tracking/dto"
	"scormtrack/internal/platform/scheduler"
)

// Live is a scenario running on the wall clock. Host messages arrive through
// Handle from any goroutine; messages the engine posts go to the sink.
type Live struct {
	rn   *run
	loop *scheduler.Loop
}

// Serve starts sc in real time. Its steps fire at their offsets; there are no
// expectations to check.
func (r *Runner) Serve(ctx context.Context, sc Scenario, sink func([]byte)) (*Live, error) {
	loop := scheduler.NewLoop()
	rn, err := r.newRun(ctx, sc, loop)
	if err != nil {
		return nil, err
	}
	rn.sink = sink
	var loadErr error
	loop.Do(func() { loadErr = rn.load() })
	if loadErr != nil {
		loop.Stop()
		return nil, loadErr
	}
	for _, step := range sc.Steps {
		step := step
		loop.AfterFunc(step.At, func() { rn.apply(step) })
	}
	return &Live{rn: rn, loop: loop}, nil
}

// Handle passes one raw host message to the engine of the current page load.
func (l *Live) Handle(ctx context.Context, raw []byte) error {
	l.rn.mu.Lock()
	handler := l.rn.handler
	l.rn.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no page loaded")
	}
	return handler.Handle(ctx, raw)
}

func (l *Live) Snapshot() dto.SnapshotOutput {
	l.rn.mu.Lock()
	usecase := l.rn.usecase
	l.rn.mu.Unlock()
	return usecase.Snapshot()
}

// Events copies the transcript so far.
func (l *Live) Events() []Event {
	var out []Event
	l.loop.Do(func() {
		out = append(out, l.rn.result.Events...)
	})
	return out
}

func (l *Live) Close() {
	l.loop.Do(l.rn.unload)
	l.loop.Stop()
}
