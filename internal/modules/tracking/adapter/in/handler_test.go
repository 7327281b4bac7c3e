package in

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

type recordingUsecase struct {
	mu       sync.Mutex
	messages []string
}

func (u *recordingUsecase) Start(context.Context) error { return nil }
func (u *recordingUsecase) Stop()                       {}
func (u *recordingUsecase) OnAPIReady(api trackingout.SCORMAPI, _ domain.APIVersion) trackingout.SCORMAPI {
	return api
}
func (u *recordingUsecase) HandleMessage(_ context.Context, raw []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.messages = append(u.messages, string(raw))
	return nil
}
func (u *recordingUsecase) Navigate(context.Context, int) bool                { return false }
func (u *recordingUsecase) ReportProgress(context.Context, dto.ProgressInput) {}
func (u *recordingUsecase) Snapshot() dto.SnapshotOutput                      { return dto.SnapshotOutput{} }

func (u *recordingUsecase) received() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.messages...)
}

func TestMessageHandlerValidation(t *testing.T) {
	t.Parallel()
	uc := &recordingUsecase{}
	handler, err := NewMessageHandler(uc)
	require.NoError(t, err)

	valid := []string{
		`{"type":"scorm-navigate-to-slide","cmid":42,"slide":12}`,
		`{"type":"scorm-navigate-to-slide","cmid":"42","slide":"3"}`,
		`{"type":"activity-progress","cmid":42}`,
	}
	for _, raw := range valid {
		assert.NoError(t, handler.Handle(context.Background(), []byte(raw)), raw)
	}
	invalid := []string{
		`{"cmid":42}`,
		`{"type":"scorm-navigate-to-slide","cmid":42}`,
		`{"type":"scorm-navigate-to-slide","cmid":42,"slide":0}`,
		`{"type":"scorm-navigate-to-slide","cmid":true,"slide":2}`,
		`not json`,
	}
	for _, raw := range invalid {
		assert.Error(t, handler.Handle(context.Background(), []byte(raw)), raw)
	}
	assert.Len(t, uc.received(), len(valid))
}

func TestBridgeRoundTrip(t *testing.T) {
	t.Parallel()
	uc := &recordingUsecase{}
	handler, err := NewMessageHandler(uc)
	require.NoError(t, err)
	bridge := NewBridge(handler, zerolog.Nop(), 50)
	srv := httptest.NewServer(bridge)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return bridge.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	msg := `{"type":"scorm-navigate-to-slide","cmid":42,"slide":4}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"cmid":42}`)))
	require.Eventually(t, func() bool { return len(uc.received()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, msg, uc.received()[0])

	require.NoError(t, bridge.Broadcast([]byte(`{"type":"scorm-progress","currentSlide":4}`)))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"scorm-progress","currentSlide":4}`, string(data))
}
