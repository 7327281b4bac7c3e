package service

import (
	"reflect"

	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// OnAPIReady wraps a freshly discovered API object. Calling it again with
// the same object returns the existing wrapper.
func (e *Engine) OnAPIReady(api trackingout.SCORMAPI, version domain.APIVersion) trackingout.SCORMAPI {
	if api == nil {
		return nil
	}
	if ic, ok := api.(*interceptor); ok && ic.e == e {
		return ic
	}
	if e.api != nil && sameAPI(e.api.raw, api) {
		return e.api
	}
	shape, ok := domain.ShapeFor(version)
	if !ok {
		e.log.Warn().Str("version", string(version)).Msg("unknown scorm api version, leaving api unwrapped")
		return api
	}
	e.session.APIVersion = version
	ic := newInterceptor(e, api, shape)
	ic.correctBeforeInit()
	e.api = ic
	e.stopAPIPoll()
	e.log.Info().Str("version", string(version)).Msg("scorm api wrapped")
	return ic
}

// sameAPI reports whether a and b are the same API object. Hosts may hand
// over values whose dynamic type cannot be compared with ==, such as maps or
// structs holding slices; reference kinds compare by address and other
// uncomparable values never match.
func sameAPI(a, b trackingout.SCORMAPI) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// watchForAPI hooks assignment of the API object and also polls for it,
// for hosts that publish the object before the hook can be installed.
func (e *Engine) watchForAPI() {
	host := e.deps.APIHost
	if host == nil {
		return
	}
	host.OnAssign(func(api trackingout.SCORMAPI, version domain.APIVersion) trackingout.SCORMAPI {
		return e.OnAPIReady(api, version)
	})
	if e.findAPIOnce() {
		return
	}
	e.apiPoll = e.sched.Every(e.deps.Timing.APIPollInterval, func() {
		e.apiPollAttempts++
		if e.findAPIOnce() {
			return
		}
		if e.apiPollAttempts >= e.deps.Timing.APIPollAttempts {
			e.log.Debug().Int("attempts", e.apiPollAttempts).Msg("scorm api not found")
			e.stopAPIPoll()
		}
	})
}

func (e *Engine) findAPIOnce() bool {
	if e.api != nil {
		e.stopAPIPoll()
		return true
	}
	api, version, ok := e.deps.APIHost.Lookup()
	if !ok {
		return false
	}
	wrapped := e.OnAPIReady(api, version)
	if wrapped != api {
		e.deps.APIHost.Install(version, wrapped)
	}
	return e.api != nil
}

func (e *Engine) stopAPIPoll() {
	if e.apiPoll != 0 {
		e.sched.Cancel(e.apiPoll)
		e.apiPoll = 0
	}
}
