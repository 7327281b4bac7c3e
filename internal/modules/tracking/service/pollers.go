package service

import (
	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/platform/scheduler"
)

func (e *Engine) startPollers() {
	t := e.deps.Timing

	retries := 0
	var retry scheduler.Handle
	retry = e.every(t.InitialRetry, func() {
		retries++
		e.pollPosition(true)
		if retries >= t.InitialRetries {
			e.sched.Cancel(retry)
		}
	})

	e.every(t.PositionPoll, func() { e.pollPosition(false) })

	if e.deps.Vendors != nil {
		e.after(t.VendorStartDelay, func() {
			e.every(t.VendorPoll, e.pollVendor)
			e.every(t.GenericPoll, e.pollGeneric)
		})
	}
	if e.deps.Frame != nil {
		e.stopObserver = e.deps.Frame.ObserveMutations(e.onMutation)
	}
}

// pollPosition is the fallback signal for content that does not report
// through the API as expected.
func (e *Engine) pollPosition(force bool) {
	ic := e.api
	if ic == nil {
		if force {
			e.report(progressInput{force: true})
		}
		return
	}
	in := progressInput{
		status: ic.raw.GetValue(ic.shape.StatusField),
		force:  force,
	}
	if ic.contentWrites == 0 {
		location := ic.raw.GetValue(ic.shape.LocationField)
		if ic.forcing() {
			location = e.formatLocation(ic.forced)
		}
		in.rawPosition = location
		in.source = domain.SourceNavigation
		if res, ok := e.deps.Codec.Decode(ic.raw.GetValue(ic.shape.SuspendDataField)); ok && res.Current > 0 {
			in.directPosition = res.Current
			in.source = domain.SourceSuspendData
		}
	}
	e.report(in)
}

func (e *Engine) pollVendor() {
	sig, ok := e.deps.Vendors.Detect()
	if !ok {
		return
	}
	e.lastBrandedHit = e.sched.Now()
	e.report(progressInput{directPosition: sig.Current, total: sig.Total, source: domain.SourceNavigation})
}

// pollGeneric stays quiet while a branded detector is producing readings.
func (e *Engine) pollGeneric() {
	if !e.lastBrandedHit.IsZero() && e.sched.Now().Sub(e.lastBrandedHit) < 2*e.deps.Timing.VendorPoll {
		return
	}
	sig, ok := e.deps.Vendors.DetectGeneric()
	if !ok {
		return
	}
	e.report(progressInput{directPosition: sig.Current, total: sig.Total, source: domain.SourceNavigation})
}

func (e *Engine) onMutation() {
	if e.mutationTimer != 0 {
		e.sched.Cancel(e.mutationTimer)
	}
	e.mutationTimer = e.sched.AfterFunc(e.deps.Timing.MutationDebounce, func() {
		e.mutationTimer = 0
		if e.deps.Vendors == nil {
			return
		}
		e.pollVendor()
		e.pollGeneric()
	})
}

// deferredWrite runs once the intercept window has closed. It leaves the
// backing store at the furthest known position, unless a newer navigation
// has taken over.
func (e *Engine) deferredWrite() {
	ic := e.api
	s := e.session
	if ic == nil || s.FurthestPosition < 1 {
		return
	}
	if s.Pending != nil {
		if e.superseded(s.Pending.NavigationID) {
			e.log.Debug().Str("nav_id", s.Pending.NavigationID).Msg("skipping deferred write for superseded navigation")
			return
		}
		ic.writeThrough(s.FurthestPosition)
		return
	}
	location := ic.raw.GetValue(ic.shape.LocationField)
	suspend := ic.raw.GetValue(ic.shape.SuspendDataField)
	if e.persistedPosition(location, suspend) < s.FurthestPosition {
		ic.writeThrough(s.FurthestPosition)
	}
}
