package service

import (
	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
)

type progressInput struct {
	rawPosition    string
	status         string
	rawScore       string
	directPosition int
	total          int
	source         domain.PositionSource
	force          bool
}

// ReportProgress folds one observation into the session and, when anything
// changed, tells the host.
func (e *Engine) ReportProgress(in dto.ProgressInput) {
	source := domain.PositionSource(in.Source)
	if source == "" {
		source = domain.SourceUnknown
	}
	e.report(progressInput{
		rawPosition:    in.RawPosition,
		status:         in.Status,
		rawScore:       in.RawScore,
		directPosition: in.DirectPosition,
		total:          in.Total,
		source:         source,
		force:          in.Force,
	})
}

func (e *Engine) report(in progressInput) {
	s := e.session
	now := e.sched.Now()
	before := *s

	current := s.CurrentPosition
	source := s.PositionSource
	switch {
	case in.directPosition > 0:
		stale := s.Pending == nil &&
			now.Sub(s.LoadedAt) < e.deps.Timing.BootGuard &&
			in.directPosition < s.LastReported &&
			in.directPosition < s.FurthestPosition
		if stale {
			e.log.Debug().Int("position", in.directPosition).Msg("ignoring stale position during boot")
		} else {
			current = in.directPosition
			source = in.source
		}
	case in.rawPosition != "":
		if pos, ok := domain.ParseSlideNumber(in.rawPosition); ok {
			current = pos
			source = in.source
		}
	}
	if in.rawPosition != "" {
		s.LastLocation = in.rawPosition
	}
	if in.status != "" {
		s.LastStatus = in.status
	}
	if in.rawScore != "" {
		s.LastScore = in.rawScore
	}
	if in.total > 1 {
		s.TotalPositions = in.total
	}
	s.CurrentPosition = current
	if source != "" {
		s.PositionSource = source
	}

	advanced := current > 0 && s.AdvanceFurthestRespectingTarget(current)
	if advanced {
		e.persistFurthest()
	}
	if advanced || s.TotalPositions != before.TotalPositions {
		e.synthesizeScore()
	}

	changed := s.CurrentPosition != before.CurrentPosition ||
		s.FurthestPosition != before.FurthestPosition ||
		s.TotalPositions != before.TotalPositions ||
		s.LastStatus != before.LastStatus ||
		s.LastScore != before.LastScore ||
		s.LastLocation != before.LastLocation
	if changed || in.force {
		e.emit()
	}
}

func (e *Engine) persistFurthest() {
	e.store.saveMax(e.ctx, domain.FurthestKey(e.deps.ActivityID), e.session.FurthestPosition)
}

// synthesizeScore writes a furthest-based score for content that never
// reports one itself.
func (e *Engine) synthesizeScore() {
	if e.scoreManaged || e.api == nil {
		return
	}
	floor, ok := e.session.ScoreFloor()
	if !ok {
		return
	}
	score := formatScore(floor)
	if score == e.session.LastScore {
		return
	}
	if succeeded(e.api.raw.SetValue(e.api.shape.ScoreField, score)) {
		e.api.raw.Commit("")
		e.session.LastScore = score
	}
}

// persistedPosition is where content would resume from the backing store.
// Content resumes from its suspend data when it has any, so that wins over
// the location field.
func (e *Engine) persistedPosition(location, suspend string) int {
	if res, ok := e.deps.Codec.Decode(suspend); ok && res.Current > 0 {
		return res.Current
	}
	pos, _ := domain.ParseSlideNumber(location)
	return pos
}

func (e *Engine) emit() {
	s := e.session
	msg := dto.ProgressMessage{
		Type:            dto.TypeProgress,
		CMID:            dto.ID(s.ActivityID),
		SCORMID:         dto.ID(s.ItemID),
		CurrentSlide:    s.CurrentPosition,
		TotalSlides:     s.KnownTotal(),
		FurthestSlide:   s.FurthestPosition,
		LessonLocation:  s.LastLocation,
		LessonStatus:    s.LastStatus,
		Score:           s.LastScore,
		SlideSource:     string(s.PositionSource),
		Timestamp:       e.sched.Now().UnixMilli(),
		ProgressPercent: s.ProgressPercent(),
		CurrentPercent:  s.CurrentPercent(),
	}
	e.post(msg)
	s.LastReported = s.CurrentPosition
}

// post sends msg to the parent, and to the top window when that is a
// different window.
func (e *Engine) post(msg any) {
	m := e.deps.Messenger
	if m == nil {
		return
	}
	if err := m.PostToParent(msg); err != nil {
		e.log.Debug().Err(err).Msg("post to parent failed")
	}
	if m.TopIsParent() {
		return
	}
	if err := m.PostToTop(msg); err != nil {
		e.log.Debug().Err(err).Msg("post to top failed")
	}
}
