package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/platform/id"
	"scormtrack/internal/platform/scheduler"
)

// Deps collects everything the engine talks to. Nil optional ports disable
// the behaviour that needs them.
type Deps struct {
	ActivityID  string
	ItemID      string
	Timing      config.Timing
	Scheduler   scheduler.Scheduler
	IDs         id.Generator
	TabStore    trackingout.KeyValueStore
	OriginStore trackingout.KeyValueStore
	Messenger   trackingout.HostMessenger
	Frame       trackingout.ContentFrame
	Vendors     trackingout.VendorBridge
	Codec       trackingout.SuspendDataCodec
	APIHost     trackingout.APIHost
	Logger      zerolog.Logger
}

// Engine tracks one content frame: it corrects resume state, reports
// progress to the host and carries out navigation requests.
type Engine struct {
	deps    Deps
	sched   scheduler.Scheduler
	log     zerolog.Logger
	ctx     context.Context
	session *domain.Session
	store   *tieredStore

	api       *interceptor
	navWindow domain.InterceptWindow
	locFormat domain.LocationFormat

	handles         []scheduler.Handle
	apiPoll         scheduler.Handle
	apiPollAttempts int
	mutationTimer   scheduler.Handle
	stopObserver    func()
	lastBrandedHit  time.Time
	lastDelimited   int
	scoreManaged    bool
	started         bool
}

func NewEngine(deps Deps) (*Engine, error) {
	if deps.ActivityID == "" {
		return nil, fmt.Errorf("activity id is required")
	}
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if deps.Codec == nil {
		return nil, fmt.Errorf("suspend data codec is required")
	}
	if deps.IDs == nil {
		deps.IDs = id.UUID{}
	}
	return &Engine{
		deps:    deps,
		sched:   deps.Scheduler,
		log:     deps.Logger,
		ctx:     context.Background(),
		session: domain.NewSession(deps.ActivityID, deps.ItemID, deps.Scheduler.Now()),
		store:   newTieredStore(deps.TabStore, deps.OriginStore, deps.Logger),
	}, nil
}

// Start loads persisted state, hooks API discovery and arms every poller.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return nil
	}
	e.started = true
	if ctx != nil {
		e.ctx = ctx
	}
	now := e.sched.Now()
	e.session.LoadedAt = now
	t := e.deps.Timing
	cmid := e.deps.ActivityID

	if furthest := e.store.loadInt(e.ctx, domain.FurthestKey(cmid)); furthest > 0 {
		e.session.FurthestPosition = furthest
	}
	if raw, ok := e.store.origin(e.ctx, domain.LocationFormatKey(cmid)); ok {
		format := domain.LocationFormat{}
		if err := json.Unmarshal([]byte(raw), &format); err == nil {
			e.locFormat = format
		}
	}
	if pending, ok := e.consumePending(); ok {
		e.session.Pending = &pending
		e.store.setOrigin(e.ctx, domain.CurrentNavigationKey(cmid), pending.NavigationID)
		e.store.removeOrigin(e.ctx, domain.NavigationStartingKey(cmid))
		if e.session.AdvanceFurthest(pending.FurthestHint) {
			e.store.saveMax(e.ctx, domain.FurthestKey(cmid), e.session.FurthestPosition)
		}
		e.navWindow = domain.InterceptWindow{Start: now, Length: t.InterceptWindow}
		e.log.Info().Int("target", pending.TargetPosition).Str("nav_id", pending.NavigationID).Msg("pending navigation consumed")
	}

	e.watchForAPI()
	e.after(t.InterceptWindow+t.DeferredWriteDelay, e.deferredWrite)
	e.startPollers()
	return nil
}

// Stop cancels every scheduled task. The engine is not reusable afterwards.
func (e *Engine) Stop() {
	for _, h := range e.handles {
		e.sched.Cancel(h)
	}
	e.handles = nil
	if e.apiPoll != 0 {
		e.sched.Cancel(e.apiPoll)
		e.apiPoll = 0
	}
	if e.mutationTimer != 0 {
		e.sched.Cancel(e.mutationTimer)
		e.mutationTimer = 0
	}
	if e.stopObserver != nil {
		e.stopObserver()
		e.stopObserver = nil
	}
}

func (e *Engine) Session() domain.Session {
	s := *e.session
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

// APIWrapped reports whether content is talking through the interceptor.
func (e *Engine) APIWrapped() bool {
	return e.api != nil
}

func (e *Engine) after(d time.Duration, fn func()) {
	e.handles = append(e.handles, e.sched.AfterFunc(d, fn))
}

func (e *Engine) every(d time.Duration, fn func()) scheduler.Handle {
	h := e.sched.Every(d, fn)
	e.handles = append(e.handles, h)
	return h
}

func (e *Engine) formatLocation(pos int) string {
	return e.locFormat.Format(pos)
}

func (e *Engine) rememberLocationFormat(raw string) {
	format, ok := domain.DetectLocationFormat(raw)
	if !ok || format == e.locFormat {
		return
	}
	e.locFormat = format
	payload, err := json.Marshal(format)
	if err != nil {
		return
	}
	e.store.setOrigin(e.ctx, domain.LocationFormatKey(e.deps.ActivityID), string(payload))
}
