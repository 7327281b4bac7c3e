package simulation

import (
	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// LMS is the backing store behind the SCORM API. It outlives page loads
// the way the host's database does.
type LMS struct {
	values      map[string]string
	shape       domain.APIShape
	initialized int
	commits     int
}

func NewLMS(version domain.APIVersion, state LMSState) *LMS {
	shape, _ := domain.ShapeFor(version)
	values := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			values[k] = v
		}
	}
	set(shape.LocationField, state.Location)
	set(shape.SuspendDataField, state.SuspendData)
	set(shape.ScoreField, state.Score)
	set(shape.StatusField, state.Status)
	return &LMS{values: values, shape: shape}
}

var _ trackingout.SCORMAPI = (*LMS)(nil)

func (l *LMS) Initialize(string) string {
	l.initialized++
	return "true"
}

func (l *LMS) GetValue(element string) string {
	return l.values[element]
}

func (l *LMS) SetValue(element, value string) string {
	l.values[element] = value
	return "true"
}

func (l *LMS) Commit(string) string {
	l.commits++
	return "true"
}

func (l *LMS) Shape() domain.APIShape { return l.shape }

// Values is a copy of every stored element.
func (l *LMS) Values() map[string]string {
	out := make(map[string]string, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}
