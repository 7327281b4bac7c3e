package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	authoringin "scormtrack/internal/modules/authoring/port/in"
	authoringservice "scormtrack/internal/modules/authoring/service"
	authoringusecase "scormtrack/internal/modules/authoring/usecase"
	codecin "scormtrack/internal/modules/suspenddata/port/in"
	codecusecase "scormtrack/internal/modules/suspenddata/usecase"
	trackinghandler "scormtrack/internal/modules/tracking/adapter/in"
	trackingadapter "scormtrack/internal/modules/tracking/adapter/out"
	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	trackingin "scormtrack/internal/modules/tracking/port/in"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/modules/tracking/service"
	trackingusecase "scormtrack/internal/modules/tracking/usecase"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/platform/dom"
	"scormtrack/internal/platform/id"
	"scormtrack/internal/platform/logging"
	"scormtrack/internal/platform/scheduler"
)

var simulationEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

const reloadDelay = 50 * time.Millisecond

type Event struct {
	At     time.Duration `json:"at"`
	Load   int           `json:"load"`
	Kind   string        `json:"kind"`
	Detail string        `json:"detail"`
}

type Result struct {
	Scenario string
	Events   []Event
	Progress []dto.ProgressMessage
	Final    dto.SnapshotOutput
	LMS      map[string]string
	Loads    int
	Reloads  int
	Failures []string
}

func (r Result) Passed() bool { return len(r.Failures) == 0 }

// Runner replays scenarios. Each run gets a fresh LMS and tab tier; the
// origin tier is shared when one is supplied.
type Runner struct {
	timing  config.Timing
	origin  trackingout.KeyValueStore
	log     zerolog.Logger
	codec   codecin.Usecase
	vendors authoringin.Usecase
}

func NewRunner(timing config.Timing, origin trackingout.KeyValueStore, log zerolog.Logger) *Runner {
	return &Runner{
		timing:  timing,
		origin:  origin,
		log:     log,
		codec:   codecusecase.NewInteractor(),
		vendors: authoringusecase.NewInteractor(authoringservice.NewRegistry()),
	}
}

type run struct {
	runner  *Runner
	sc      Scenario
	ctx     context.Context
	sched   scheduler.Scheduler
	start   time.Time
	version domain.APIVersion
	tab     *trackingadapter.MemoryStore
	origin  trackingout.KeyValueStore
	lms     *LMS
	result  *Result
	// sink receives every message the engine posts to the host.
	sink func([]byte)

	mu sync.Mutex
	// usecase and handler serve callers outside the scheduler. inner is for
	// steps, which already run on it.
	usecase     trackingin.Usecase
	handler     *trackinghandler.MessageHandler
	inner       *trackinghandler.MessageHandler
	engine      *service.Engine
	player      *Player
	bootTimer   scheduler.Handle
	reloadTimer scheduler.Handle
}

// inline runs Do in place. Code already running as a scheduler task uses it
// to reach the use case without taking the scheduler lock twice.
type inline struct{ scheduler.Scheduler }

func (inline) Do(fn func()) { fn() }

func (r *Runner) newRun(ctx context.Context, sc Scenario, sched scheduler.Scheduler) (*run, error) {
	version, ok := domain.ParseAPIVersion(sc.APIVersion)
	if !ok {
		return nil, fmt.Errorf("unsupported api version %q", sc.APIVersion)
	}
	origin := r.origin
	if origin == nil {
		origin = trackingadapter.NewMemoryStore()
	}
	if sc.Storage.Furthest > 0 {
		if err := origin.Set(ctx, domain.FurthestKey(sc.ActivityID), fmt.Sprint(sc.Storage.Furthest)); err != nil {
			return nil, fmt.Errorf("seed origin storage: %w", err)
		}
	}
	return &run{
		runner:  r,
		sc:      sc,
		ctx:     ctx,
		sched:   sched,
		start:   sched.Now(),
		version: version,
		tab:     trackingadapter.NewMemoryStore(),
		origin:  origin,
		lms:     NewLMS(version, sc.LMS),
		result:  &Result{Scenario: sc.Name},
	}, nil
}

// Run replays sc in virtual time and checks its expectations.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	sched := scheduler.NewManual(simulationEpoch)
	rn, err := r.newRun(ctx, sc, sched)
	if err != nil {
		return Result{}, err
	}
	if err := rn.load(); err != nil {
		return Result{}, err
	}

	elapsed := time.Duration(0)
	for _, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if step.At > elapsed {
			sched.Advance(step.At - elapsed)
			elapsed = step.At
		}
		rn.apply(step)
	}
	sched.Advance(sc.Settle)

	res := rn.result
	res.Final = rn.usecase.Snapshot()
	res.LMS = rn.lms.Values()
	rn.check()
	rn.unload()
	return *res, nil
}

func (rn *run) event(kind, detail string) {
	rn.result.Events = append(rn.result.Events, Event{
		At:     rn.sched.Now().Sub(rn.start),
		Load:   rn.result.Loads,
		Kind:   kind,
		Detail: detail,
	})
}

func (rn *run) load() error {
	rn.result.Loads++
	sc := rn.sc
	page := dom.NewPage()
	playerPage := page
	if sc.Content.Frame != FrameNone {
		playerPage = dom.NewPage()
		page.AddFrame("player", playerPage, sc.Content.Frame == FrameCrossOrigin)
	}
	host := newPageHost(page)
	outbox := trackingadapter.NewOutbox(true)
	outbox.AddParentSink(rn.onHostMessage)

	engine, err := service.NewEngine(service.Deps{
		ActivityID:  sc.ActivityID,
		ItemID:      sc.ItemID,
		Timing:      rn.runner.timing,
		Scheduler:   rn.sched,
		IDs:         id.UUID{},
		TabStore:    rn.tab,
		OriginStore: rn.origin,
		Messenger:   outbox,
		Frame:       trackingadapter.NewDOMFrame(page, rn.runner.vendors, rn.requestReload, nil),
		Vendors:     trackingadapter.NewVendorBridgeAdapter(rn.runner.vendors, page),
		Codec:       trackingadapter.NewSuspendDataCodecAdapter(rn.runner.codec),
		APIHost:     host,
		Logger:      logging.Component(rn.runner.log, "engine", sc.ActivityID),
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	usecase := trackingusecase.NewInteractor(engine, rn.sched)
	handler, err := trackinghandler.NewMessageHandler(usecase)
	if err != nil {
		return err
	}
	inner, err := trackinghandler.NewMessageHandler(trackingusecase.NewInteractor(engine, inline{rn.sched}))
	if err != nil {
		return err
	}
	rn.mu.Lock()
	rn.usecase, rn.handler, rn.inner, rn.engine = usecase, handler, inner, engine
	rn.mu.Unlock()
	if err := engine.Start(rn.ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	rn.event("load", fmt.Sprintf("page load %d", rn.result.Loads))

	host.publish(rn.version, rn.lms)
	rn.player = newPlayer(sc.Content, playerPage, rn.runner.codec, rn.lms.Shape(), rn.event)
	player := rn.player
	rn.bootTimer = rn.sched.AfterFunc(sc.Content.BootDelay, func() {
		api, _, ok := host.Lookup()
		if !ok {
			rn.event("player", "no scorm api found")
			return
		}
		player.Boot(api)
	})
	return nil
}

func (rn *run) unload() {
	rn.engine.Stop()
	rn.player.Detach()
	rn.sched.Cancel(rn.bootTimer)
}

// requestReload schedules a reload of the content frame. Repeated requests
// before it happens collapse into one.
func (rn *run) requestReload() bool {
	if rn.reloadTimer != 0 {
		return true
	}
	rn.reloadTimer = rn.sched.AfterFunc(reloadDelay, rn.reload)
	return true
}

func (rn *run) reload() {
	rn.reloadTimer = 0
	rn.result.Reloads++
	rn.event("reload", "content frame reloads")
	rn.unload()
	if err := rn.load(); err != nil {
		rn.event("error", err.Error())
	}
}

func (rn *run) apply(step Step) {
	switch step.Action {
	case ActionGoto:
		rn.event("step", fmt.Sprintf("learner goes to slide %d", step.Slide))
		rn.player.GoTo(step.Slide)
	case ActionNavigate:
		rn.event("step", fmt.Sprintf("host requests slide %d", step.Slide))
		payload, _ := json.Marshal(dto.NavigateMessage{
			Type:  dto.TypeNavigateToSlide,
			CMID:  dto.ID(rn.sc.ActivityID),
			Slide: step.Slide,
		})
		rn.deliver(payload)
	case ActionMessage:
		rn.event("step", "host message")
		rn.deliver([]byte(step.Message))
	case ActionReload:
		rn.event("step", "learner reloads the page")
		rn.requestReload()
	case ActionCloseTab:
		rn.event("step", "learner closes the tab and reopens the course")
		rn.tab.Clear()
		rn.requestReload()
	}
}

func (rn *run) deliver(payload []byte) {
	if err := rn.inner.Handle(rn.ctx, payload); err != nil {
		rn.event("rejected", err.Error())
	}
}

func (rn *run) onHostMessage(payload []byte) error {
	env := dto.Envelope{}
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	rn.event("host", string(payload))
	if rn.sink != nil {
		rn.sink(payload)
	}
	if env.Type == dto.TypeProgress {
		msg := dto.ProgressMessage{}
		if err := json.Unmarshal(payload, &msg); err == nil {
			rn.result.Progress = append(rn.result.Progress, msg)
		}
	}
	return nil
}

func (rn *run) check() {
	res := rn.result
	exp := rn.sc.Expect
	fail := func(format string, args ...any) {
		res.Failures = append(res.Failures, fmt.Sprintf(format, args...))
	}
	if exp.Furthest != nil && res.Final.FurthestPosition != *exp.Furthest {
		fail("furthest: want %d, got %d", *exp.Furthest, res.Final.FurthestPosition)
	}
	if exp.Current != nil && res.Final.CurrentPosition != *exp.Current {
		fail("current: want %d, got %d", *exp.Current, res.Final.CurrentPosition)
	}
	if exp.LMSLocation != nil {
		if got := res.LMS[rn.lms.Shape().LocationField]; got != *exp.LMSLocation {
			fail("lms location: want %q, got %q", *exp.LMSLocation, got)
		}
	}
	if exp.Reloads != nil && res.Reloads != *exp.Reloads {
		fail("reloads: want %d, got %d", *exp.Reloads, res.Reloads)
	}
	if exp.ProgressPercent != nil {
		var got *float64
		if n := len(res.Progress); n > 0 {
			got = res.Progress[n-1].ProgressPercent
		}
		if got == nil || *got != *exp.ProgressPercent {
			fail("progress percent: want %v, got %v", *exp.ProgressPercent, describePercent(got))
		}
	}
}

func describePercent(p *float64) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprint(*p)
}
