package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	codecusecase "scormtrack/internal/modules/suspenddata/usecase"
	trackingadapter "scormtrack/internal/modules/tracking/adapter/out"
	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/platform/scheduler"
)

var epoch = time.Unix(1_700_000_000, 0).UTC()

type fakeLMS struct {
	values  map[string]string
	commits int
}

func newFakeLMS(values map[string]string) *fakeLMS {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeLMS{values: values}
}

func (f *fakeLMS) Initialize(string) string       { return "true" }
func (f *fakeLMS) GetValue(element string) string { return f.values[element] }

func (f *fakeLMS) SetValue(element, v string) string {
	f.values[element] = v
	return "true"
}

func (f *fakeLMS) Commit(string) string {
	f.commits++
	return "true"
}

type fakeHost struct {
	api       trackingout.SCORMAPI
	version   domain.APIVersion
	hook      func(trackingout.SCORMAPI, domain.APIVersion) trackingout.SCORMAPI
	installed trackingout.SCORMAPI
}

func (h *fakeHost) Lookup() (trackingout.SCORMAPI, domain.APIVersion, bool) {
	return h.api, h.version, h.api != nil
}

func (h *fakeHost) OnAssign(hook func(trackingout.SCORMAPI, domain.APIVersion) trackingout.SCORMAPI) {
	h.hook = hook
}

func (h *fakeHost) Install(_ domain.APIVersion, api trackingout.SCORMAPI) {
	h.installed = api
}

// assign publishes api the way content-side script would, running the hook.
func (h *fakeHost) assign(api trackingout.SCORMAPI, version domain.APIVersion) trackingout.SCORMAPI {
	h.api = api
	h.version = version
	if h.hook == nil {
		return api
	}
	h.installed = h.hook(api, version)
	return h.installed
}

type fakeInner struct {
	navigates bool
	posted    []any
}

func (f *fakeInner) NavigateTo(int) bool { return f.navigates }
func (f *fakeInner) PostMessage(msg any) error {
	f.posted = append(f.posted, msg)
	return nil
}

type fakeFrame struct {
	reloadOK bool
	reloads  int
	inner    []trackingout.InnerFrame
	observer func()
}

func (f *fakeFrame) Reload() bool {
	f.reloads++
	return f.reloadOK
}

func (f *fakeFrame) ReloadPage() error                     { return fmt.Errorf("no page") }
func (f *fakeFrame) InnerFrames() []trackingout.InnerFrame { return f.inner }
func (f *fakeFrame) ObserveMutations(fn func()) func() {
	f.observer = fn
	return func() { f.observer = nil }
}

type fakeVendors struct {
	branded      trackingout.VendorSignal
	brandedOK    bool
	generic      trackingout.VendorSignal
	genericOK    bool
	navigates    bool
	detectCalls  int
	genericCalls int
	navigated    []int
}

func (f *fakeVendors) Detect() (trackingout.VendorSignal, bool) {
	f.detectCalls++
	return f.branded, f.brandedOK
}

func (f *fakeVendors) DetectGeneric() (trackingout.VendorSignal, bool) {
	f.genericCalls++
	return f.generic, f.genericOK
}

func (f *fakeVendors) NavigateTo(target int) (string, bool) {
	f.navigated = append(f.navigated, target)
	if !f.navigates {
		return "", false
	}
	return "storyline", true
}

type sequenceIDs struct{ n int }

func (s *sequenceIDs) New() string {
	s.n++
	return fmt.Sprintf("nav-%d", s.n)
}

type harness struct {
	t       *testing.T
	sched   *scheduler.Manual
	tab     *trackingadapter.MemoryStore
	origin  *trackingadapter.MemoryStore
	rec     *trackingadapter.Recorder
	lms     *fakeLMS
	host    *fakeHost
	frame   *fakeFrame
	vendors *fakeVendors
	ids     *sequenceIDs
	engine  *Engine
}

func newHarness(t *testing.T, lmsValues map[string]string) *harness {
	t.Helper()
	return &harness{
		t:       t,
		sched:   scheduler.NewManual(epoch),
		tab:     trackingadapter.NewMemoryStore(),
		origin:  trackingadapter.NewMemoryStore(),
		rec:     &trackingadapter.Recorder{},
		lms:     newFakeLMS(lmsValues),
		host:    &fakeHost{},
		frame:   &fakeFrame{},
		vendors: &fakeVendors{},
		ids:     &sequenceIDs{},
	}
}

// publishAPI makes the LMS API visible before the engine starts.
func (h *harness) publishAPI() {
	h.host.api = h.lms
	h.host.version = domain.APIVersion12
}

func (h *harness) start() *Engine {
	h.t.Helper()
	outbox := trackingadapter.NewOutbox(true)
	outbox.AddParentSink(h.rec.Sink)
	engine, err := NewEngine(Deps{
		ActivityID:  "42",
		ItemID:      "7",
		Timing:      config.DefaultTiming(),
		Scheduler:   h.sched,
		IDs:         h.ids,
		TabStore:    h.tab,
		OriginStore: h.origin,
		Messenger:   outbox,
		Frame:       h.frame,
		Vendors:     h.vendors,
		Codec:       trackingadapter.NewSuspendDataCodecAdapter(codecusecase.NewInteractor()),
		APIHost:     h.host,
		Logger:      zerolog.Nop(),
	})
	require.NoError(h.t, err)
	require.NoError(h.t, engine.Start(context.Background()))
	h.engine = engine
	return engine
}

// reload tears the current engine down and boots a new one against the
// same storage and LMS, as a frame reload would.
func (h *harness) reload() *Engine {
	h.t.Helper()
	if h.engine != nil {
		h.engine.Stop()
	}
	h.host = &fakeHost{}
	h.publishAPI()
	return h.start()
}

func (h *harness) wrapped() trackingout.SCORMAPI {
	h.t.Helper()
	require.NotNil(h.t, h.host.installed, "api was not wrapped")
	return h.host.installed
}

func (h *harness) originValue(key string) (string, bool) {
	v, ok, err := h.origin.Get(context.Background(), key)
	require.NoError(h.t, err)
	return v, ok
}

const (
	location = "cmi.core.lesson_location"
	suspend  = "cmi.suspend_data"
	score    = "cmi.core.score.raw"
	status   = "cmi.core.lesson_status"
)
