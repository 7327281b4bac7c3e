package service

import (
	"math"
	"strconv"
	"strings"

	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// interceptor stands between content and the raw SCORM API. During the
// intercept window it forces reads and writes of the position fields to
// the target; afterwards it only floors location and score.
type interceptor struct {
	e      *Engine
	raw    trackingout.SCORMAPI
	shape  domain.APIShape
	forced int
	navID  string
	window domain.InterceptWindow
	// echoDisabled stops location reads from echoing the target once the
	// learner has moved away from it.
	echoDisabled  bool
	contentWrites int
}

var _ trackingout.SCORMAPI = (*interceptor)(nil)

func newInterceptor(e *Engine, raw trackingout.SCORMAPI, shape domain.APIShape) *interceptor {
	return &interceptor{e: e, raw: raw, shape: shape}
}

// correctBeforeInit rewrites the stored resume state before content reads
// it for the first time.
func (ic *interceptor) correctBeforeInit() {
	e := ic.e
	s := e.session
	location := ic.raw.GetValue(ic.shape.LocationField)
	suspend := ic.raw.GetValue(ic.shape.SuspendDataField)
	s.LastLocation = location
	s.LastRawSuspendData = suspend
	ic.inferFurthestFromScore()

	target := 0
	switch {
	case s.Pending != nil:
		target = s.Pending.TargetPosition
		ic.navID = s.Pending.NavigationID
		ic.window = e.navWindow
	case s.FurthestPosition > 0 && s.FurthestPosition > e.persistedPosition(location, suspend):
		target = s.FurthestPosition
		ic.window = domain.InterceptWindow{Start: s.LoadedAt, Length: e.deps.Timing.InterceptWindow}
	}
	if target == 0 {
		return
	}
	if modified := e.deps.Codec.Modify(suspend, target); modified != suspend {
		ic.raw.SetValue(ic.shape.SuspendDataField, modified)
	}
	ic.raw.SetValue(ic.shape.LocationField, e.formatLocation(target))
	ic.forced = target
	e.log.Info().Int("target", target).Str("nav_id", ic.navID).Msg("resume state corrected before initialize")
}

func (ic *interceptor) inferFurthestFromScore() {
	s := ic.e.session
	total := s.KnownTotal()
	if total == 0 {
		return
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(ic.raw.GetValue(ic.shape.ScoreField)), 64)
	if err != nil || score <= 0 {
		return
	}
	inferred := int(math.Round(score / 100 * float64(total)))
	if s.AdvanceFurthest(inferred) {
		s.PositionSource = domain.SourceScore
	}
}

func (ic *interceptor) forcing() bool {
	if ic.forced == 0 || !ic.window.Open(ic.e.sched.Now()) {
		return false
	}
	return !ic.e.superseded(ic.navID)
}

func (ic *interceptor) Initialize(arg string) string {
	result := ic.raw.Initialize(arg)
	ic.e.emit()
	return result
}

func (ic *interceptor) GetValue(element string) string {
	value := ic.raw.GetValue(element)
	switch element {
	case ic.shape.LocationField:
		if ic.forcing() && !ic.echoDisabled {
			return ic.e.formatLocation(ic.forced)
		}
	case ic.shape.SuspendDataField:
		if ic.forcing() {
			return ic.e.deps.Codec.Modify(value, ic.forced)
		}
	}
	return value
}

func (ic *interceptor) SetValue(element, value string) string {
	e := ic.e
	s := e.session
	switch element {
	case ic.shape.SuspendDataField:
		ic.contentWrites++
		s.LastRawSuspendData = value
		stored := value
		if ic.forcing() {
			stored = e.deps.Codec.Modify(value, ic.forced)
		}
		result := ic.raw.SetValue(element, stored)
		if succeeded(result) {
			ic.observeSuspendData(value)
		}
		return result
	case ic.shape.LocationField:
		ic.contentWrites++
		e.rememberLocationFormat(value)
		stored := value
		if pos, ok := domain.ParseSlideNumber(value); ok {
			if ic.forced > 0 && ic.navID != "" && pos != ic.forced {
				ic.echoDisabled = true
			}
			if pos < s.FurthestPosition {
				stored = e.formatLocation(s.FurthestPosition)
			}
		}
		result := ic.raw.SetValue(element, stored)
		if succeeded(result) {
			e.report(progressInput{rawPosition: value, source: domain.SourceNavigation})
		}
		return result
	case ic.shape.ScoreField:
		e.scoreManaged = true
		stored := value
		if floor, ok := s.ScoreFloor(); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && v < floor {
				stored = formatScore(floor)
			}
		}
		result := ic.raw.SetValue(element, stored)
		if succeeded(result) {
			e.report(progressInput{rawScore: stored})
		}
		return result
	case ic.shape.StatusField:
		result := ic.raw.SetValue(element, value)
		if succeeded(result) {
			e.report(progressInput{status: value})
		}
		return result
	}
	return ic.raw.SetValue(element, value)
}

func (ic *interceptor) Commit(arg string) string {
	return ic.raw.Commit(arg)
}

// observeSuspendData feeds a content write into progress. Captivate resends
// an unchanged current slide periodically; those resends are not events.
func (ic *interceptor) observeSuspendData(value string) {
	e := ic.e
	res, ok := e.deps.Codec.Decode(value)
	if !ok {
		return
	}
	if res.Furthest > 0 && e.session.AdvanceFurthestRespectingTarget(res.Furthest) {
		e.persistFurthest()
	}
	if res.Kind == trackingout.KindDelimited {
		if res.Current == e.lastDelimited {
			return
		}
		e.lastDelimited = res.Current
	}
	e.report(progressInput{directPosition: res.Current, source: domain.SourceSuspendData})
}

// writeThrough sets position and suspend data on the raw API and commits.
func (ic *interceptor) writeThrough(target int) {
	suspend := ic.raw.GetValue(ic.shape.SuspendDataField)
	if modified := ic.e.deps.Codec.Modify(suspend, target); modified != suspend {
		ic.raw.SetValue(ic.shape.SuspendDataField, modified)
	}
	ic.raw.SetValue(ic.shape.LocationField, ic.e.formatLocation(target))
	ic.raw.Commit("")
}

func succeeded(result string) bool {
	return result == "true"
}

func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
