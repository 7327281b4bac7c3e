package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scormtrack/internal/modules/tracking/dto"
	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/components"
)

type stubScenario struct {
	res   simulation.Result
	err   error
	calls int
}

func (s *stubScenario) Run(context.Context) (simulation.Result, error) {
	s.calls++
	return s.res, s.err
}

func sampleResult() simulation.Result {
	pct := 40.0
	return simulation.Result{
		Scenario: "sample",
		Events: []simulation.Event{
			{At: 0, Load: 1, Kind: "load", Detail: "page load 1"},
			{At: 300 * time.Millisecond, Load: 1, Kind: "host", Detail: `{"type":"scorm-progress","cmid":"1"}`},
		},
		Progress: []dto.ProgressMessage{
			{Type: dto.TypeProgress, CurrentSlide: 2, FurthestSlide: 2, TotalSlides: 5, ProgressPercent: &pct, CurrentPercent: &pct},
		},
		LMS:   map[string]string{"cmi.core.lesson_location": "2"},
		Loads: 1,
	}
}

func finish(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.runCmd()()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestRunResultReachesViews(t *testing.T) {
	t.Parallel()
	stub := &stubScenario{res: sampleResult()}
	m := finish(t, sized(t, NewModel("sample", stub)))

	assert.False(t, m.running)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, m.status, "pass")
	assert.Contains(t, m.View(), "scorm-progress")
}

func TestRunFailureIsReported(t *testing.T) {
	t.Parallel()
	m := finish(t, NewModel("broken", &stubScenario{err: errors.New("boom")}))
	assert.Equal(t, "replay failed: boom", m.status)
}

func TestFailedExpectationsShowInStatus(t *testing.T) {
	t.Parallel()
	res := sampleResult()
	res.Failures = []string{"furthest: want 3, got 2"}
	m := finish(t, NewModel("sample", &stubScenario{res: res}))
	assert.Contains(t, m.status, "1 expectation(s) failed")
}

func TestTabCycling(t *testing.T) {
	t.Parallel()
	m := finish(t, sized(t, NewModel("sample", &stubScenario{res: sampleResult()})))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, tabProgress, m.activeTab)
	assert.True(t, strings.Contains(m.View(), "Final state"))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	assert.Equal(t, tabTimeline, m.activeTab)
}

func TestPaletteCommands(t *testing.T) {
	t.Parallel()
	m := finish(t, NewModel("sample", &stubScenario{res: sampleResult()}))

	next, _ := m.Update(components.PaletteSubmitMsg{Input: "view:progress"})
	m = next.(Model)
	assert.Equal(t, tabProgress, m.activeTab)

	next, _ = m.Update(components.PaletteSubmitMsg{Input: "events:kind host"})
	m = next.(Model)
	assert.Equal(t, tabTimeline, m.activeTab)
	assert.Equal(t, "showing host events", m.status)

	next, _ = m.Update(components.PaletteSubmitMsg{Input: "events:kind"})
	m = next.(Model)
	assert.Equal(t, "usage: events:kind <kind>", m.status)

	next, _ = m.Update(components.PaletteSubmitMsg{Input: "nonsense"})
	m = next.(Model)
	assert.Equal(t, "unknown command: nonsense", m.status)
}

func TestRerunIgnoredWhileRunning(t *testing.T) {
	t.Parallel()
	stub := &stubScenario{res: sampleResult()}
	m := NewModel("sample", stub)
	assert.Nil(t, m.rerun())

	m = finish(t, m)
	cmd := m.rerun()
	require.NotNil(t, cmd)
	assert.True(t, m.running)
}
