package simulation

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scormtrack/internal/modules/tracking/dto"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/platform/logging"
)

type sinkRecorder struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (s *sinkRecorder) record(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, append([]byte(nil), payload...))
}

func (s *sinkRecorder) ofType(msgType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payloads {
		env := dto.Envelope{}
		if json.Unmarshal(p, &env) == nil && env.Type == msgType {
			n++
		}
	}
	return n
}

func TestServeRunsOnWallClock(t *testing.T) {
	t.Parallel()
	sc, err := ParseScenario([]byte(`
activity_id: "5"
content: {vendor: storyline, slides: 6, boot_delay: 20ms}
steps:
  - {at: 100ms, action: goto, slide: 2}
`))
	require.NoError(t, err)

	sink := &sinkRecorder{}
	log := logging.NewWithWriter(config.Log{Level: "error"}, io.Discard)
	live, err := NewRunner(config.DefaultTiming(), nil, log).Serve(context.Background(), sc, sink.record)
	require.NoError(t, err)
	t.Cleanup(live.Close)

	require.Eventually(t, func() bool {
		return live.Snapshot().CurrentPosition == 2
	}, 3*time.Second, 10*time.Millisecond)

	nav := `{"type":"scorm-navigate-to-slide","cmid":"5","slide":4}`
	require.NoError(t, live.Handle(context.Background(), []byte(nav)))
	snap := live.Snapshot()
	assert.Equal(t, 4, snap.CurrentPosition)
	assert.Equal(t, 4, snap.FurthestPosition)
	assert.Equal(t, 1, sink.ofType(dto.TypeNavigationResult))
	assert.NotZero(t, sink.ofType(dto.TypeProgress))

	require.Error(t, live.Handle(context.Background(), []byte(`{"type":"scorm-navigate-to-slide"}`)))
	assert.NotEmpty(t, live.Events())
}
