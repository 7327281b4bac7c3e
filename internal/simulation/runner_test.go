package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackingadapter "scormtrack/internal/modules/tracking/adapter/out"
	"scormtrack/internal/modules/tracking/dto"
	"scormtrack/internal/platform/config"
	apperrors "scormtrack/internal/platform/errors"
	"scormtrack/internal/platform/logging"
)

func quietRunner(t *testing.T, origin *trackingadapter.SQLiteStore) *Runner {
	t.Helper()
	log := logging.NewWithWriter(config.Log{Level: "error"}, io.Discard)
	if origin == nil {
		return NewRunner(config.DefaultTiming(), nil, log)
	}
	return NewRunner(config.DefaultTiming(), origin, log)
}

func runFile(t *testing.T, name string) Result {
	t.Helper()
	sc, err := LoadScenario(filepath.Join("testdata", name))
	require.NoError(t, err)
	res, err := quietRunner(t, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	return res
}

func TestScenarioFiles(t *testing.T) {
	t.Parallel()
	for _, name := range []string{
		"resume_generic.yaml",
		"reload_navigation.yaml",
		"storyline_jump.yaml",
		"captivate_reopen.yaml",
	} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			res := runFile(t, name)
			assert.True(t, res.Passed(), "failures: %v", res.Failures)
		})
	}
}

func navigationResults(t *testing.T, res Result) []dto.NavigationResultMessage {
	t.Helper()
	out := []dto.NavigationResultMessage{}
	for _, ev := range res.Events {
		if ev.Kind != "host" {
			continue
		}
		env := dto.Envelope{}
		require.NoError(t, json.Unmarshal([]byte(ev.Detail), &env))
		if env.Type != dto.TypeNavigationResult {
			continue
		}
		msg := dto.NavigationResultMessage{}
		require.NoError(t, json.Unmarshal([]byte(ev.Detail), &msg))
		out = append(out, msg)
	}
	return out
}

func TestReloadNavigationReportsSuccessAndKeepsFurthest(t *testing.T) {
	t.Parallel()
	res := runFile(t, "reload_navigation.yaml")

	results := navigationResults(t, res)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 12, results[0].TargetSlide)
	assert.Equal(t, 2, res.Loads)

	// the jump itself never counts as progress
	for _, msg := range res.Progress {
		assert.LessOrEqual(t, msg.FurthestSlide, 5)
	}
	assert.Equal(t, "slide=5&seen=1", res.LMS["cmi.suspend_data"])
}

func TestStorylineNavigationStaysInPlace(t *testing.T) {
	t.Parallel()
	res := runFile(t, "storyline_jump.yaml")

	results := navigationResults(t, res)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 9, results[0].CurrentSlide)
	assert.Equal(t, 1, res.Loads)
	assert.Equal(t, 15, res.Final.TotalPositions)
}

func TestUnknownTotalReportsNullPercent(t *testing.T) {
	t.Parallel()
	sc, err := ParseScenario([]byte(`
name: plain content
content: {vendor: none, slides: 8}
steps:
  - {at: 1s, action: goto, slide: 3}
expect: {furthest: 3, current: 3}
`))
	require.NoError(t, err)

	res, err := quietRunner(t, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	require.True(t, res.Passed(), "failures: %v", res.Failures)
	require.NotEmpty(t, res.Progress)
	for _, msg := range res.Progress {
		assert.Nil(t, msg.ProgressPercent)
		assert.Nil(t, msg.CurrentPercent)
		assert.Zero(t, msg.TotalSlides)
	}
}

func TestOriginStorageSurvivesNewAttempt(t *testing.T) {
	t.Parallel()
	store, err := trackingadapter.NewSQLiteStore(filepath.Join(t.TempDir(), "origin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	runner := quietRunner(t, store)

	first, err := ParseScenario([]byte(`
name: first attempt
activity_id: "9"
content: {vendor: none, slides: 10}
steps:
  - {at: 1s, action: goto, slide: 7}
expect: {furthest: 7}
`))
	require.NoError(t, err)
	res, err := runner.Run(context.Background(), first)
	require.NoError(t, err)
	require.True(t, res.Passed(), "failures: %v", res.Failures)

	// a fresh LMS attempt has no resume data; origin storage still knows
	second, err := ParseScenario([]byte(`
name: second attempt
activity_id: "9"
content: {vendor: none, slides: 10}
expect: {furthest: 7, current: 7, lms_location: "7"}
`))
	require.NoError(t, err)
	res, err = runner.Run(context.Background(), second)
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestFailedExpectationsAreCollected(t *testing.T) {
	t.Parallel()
	sc, err := ParseScenario([]byte(`
content: {vendor: none, slides: 4}
expect: {furthest: 3, reloads: 2}
`))
	require.NoError(t, err)

	res, err := quietRunner(t, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, res.Passed())
	assert.Len(t, res.Failures, 2)
}

func TestParseScenarioDefaults(t *testing.T) {
	t.Parallel()
	sc, err := ParseScenario([]byte(`
steps:
  - {at: 5s, action: reload}
  - {at: 2s, action: goto, slide: 2}
`))
	require.NoError(t, err)
	assert.Equal(t, "1", sc.ActivityID)
	assert.Equal(t, "1.2", sc.APIVersion)
	assert.Equal(t, "none", sc.Content.Vendor)
	assert.Equal(t, FrameNone, sc.Content.Frame)
	assert.Equal(t, 10, sc.Content.Slides)
	assert.Equal(t, 300*time.Millisecond, sc.Content.BootDelay)
	assert.Equal(t, 15*time.Second, sc.Settle)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, ActionGoto, sc.Steps[0].Action)
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"version": `api_version: "3.0"`,
		"vendor":  `content: {vendor: flash}`,
		"frame":   `content: {frame: sideways}`,
		"slides":  `content: {slides: -1}`,
		"goto":    `steps: [{at: 1s, action: goto}]`,
		"message": `steps: [{at: 1s, action: message}]`,
		"action":  `steps: [{at: 1s, action: dance}]`,
	}
	for name, payload := range cases {
		payload := payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseScenario([]byte(payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestRunRejectsMalformedHostMessage(t *testing.T) {
	t.Parallel()
	sc, err := ParseScenario([]byte(`
content: {vendor: none}
steps:
  - {at: 1s, action: message, message: '{"type":"scorm-navigate-to-slide","cmid":"1","slide":0}'}
`))
	require.NoError(t, err)

	res, err := quietRunner(t, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	rejected := 0
	for _, ev := range res.Events {
		if ev.Kind == "rejected" {
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
	assert.Empty(t, navigationResults(t, res))
}
