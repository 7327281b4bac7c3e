package usecase

import (
	"context"

	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	trackingin "scormtrack/internal/modules/tracking/port/in"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/modules/tracking/service"
	"scormtrack/internal/platform/scheduler"
)

// Interactor serialises outside calls onto the engine's scheduler so they
// never interleave with timer callbacks.
type Interactor struct {
	engine *service.Engine
	sched  scheduler.Scheduler
}

func NewInteractor(engine *service.Engine, sched scheduler.Scheduler) trackingin.Usecase {
	return &Interactor{engine: engine, sched: sched}
}

func (i *Interactor) Start(ctx context.Context) error {
	var err error
	i.sched.Do(func() { err = i.engine.Start(ctx) })
	return err
}

func (i *Interactor) Stop() {
	i.sched.Do(i.engine.Stop)
}

func (i *Interactor) OnAPIReady(api trackingout.SCORMAPI, version domain.APIVersion) trackingout.SCORMAPI {
	var wrapped trackingout.SCORMAPI
	i.sched.Do(func() { wrapped = i.engine.OnAPIReady(api, version) })
	return wrapped
}

func (i *Interactor) HandleMessage(ctx context.Context, raw []byte) error {
	var err error
	i.sched.Do(func() { err = i.engine.HandleMessage(ctx, raw) })
	return err
}

func (i *Interactor) Navigate(_ context.Context, target int) bool {
	var ok bool
	i.sched.Do(func() { ok = i.engine.Navigate(target) })
	return ok
}

func (i *Interactor) ReportProgress(_ context.Context, input dto.ProgressInput) {
	i.sched.Do(func() { i.engine.ReportProgress(input) })
}

func (i *Interactor) Snapshot() dto.SnapshotOutput {
	var out dto.SnapshotOutput
	i.sched.Do(func() {
		s := i.engine.Session()
		out = dto.SnapshotOutput{
			ActivityID:       s.ActivityID,
			ItemID:           s.ItemID,
			CurrentPosition:  s.CurrentPosition,
			FurthestPosition: s.FurthestPosition,
			TotalPositions:   s.TotalPositions,
			LastStatus:       s.LastStatus,
			LastLocation:     s.LastLocation,
			LastScore:        s.LastScore,
			PositionSource:   string(s.PositionSource),
			APIVersion:       string(s.APIVersion),
			APIWrapped:       i.engine.APIWrapped(),
		}
		if s.Pending != nil {
			out.PendingTarget = s.Pending.TargetPosition
		}
	})
	return out
}
