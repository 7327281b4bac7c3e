package domain

import (
	"math"
	"time"
)

type PositionSource string

const (
	SourceSuspendData PositionSource = "suspend_data"
	SourceNavigation  PositionSource = "navigation"
	SourceScore       PositionSource = "score"
	SourceUnknown     PositionSource = "unknown"
)

// Session is the mutable tracking state of one activity instance. It lives
// as long as the content frame does.
type Session struct {
	ActivityID         string
	ItemID             string
	CurrentPosition    int
	FurthestPosition   int
	TotalPositions     int
	LastStatus         string
	LastLocation       string
	LastScore          string
	LastRawSuspendData string
	PositionSource     PositionSource
	APIVersion         APIVersion
	LoadedAt           time.Time
	Pending            *PendingNavigation
	// TagTargetExceeded turns true once the learner moves past the target
	// of a pending navigation on their own.
	TagTargetExceeded bool
	LastReported      int
}

func NewSession(activityID, itemID string, now time.Time) *Session {
	return &Session{
		ActivityID:     activityID,
		ItemID:         itemID,
		PositionSource: SourceUnknown,
		LoadedAt:       now,
	}
}

// AdvanceFurthest raises the high-water mark and reports whether it moved.
func (s *Session) AdvanceFurthest(pos int) bool {
	if pos <= s.FurthestPosition {
		return false
	}
	s.FurthestPosition = pos
	return true
}

// AdvanceFurthestRespectingTarget applies AdvanceFurthest unless a pending
// navigation target has not yet been passed naturally. A jump requested by
// someone else does not count as having viewed the skipped content.
func (s *Session) AdvanceFurthestRespectingTarget(pos int) bool {
	if s.Pending != nil && !s.TagTargetExceeded {
		if pos <= s.Pending.TargetPosition {
			return false
		}
		s.TagTargetExceeded = true
	}
	return s.AdvanceFurthest(pos)
}

// KnownTotal is the total for reporting; totals of one or less are unknown.
func (s *Session) KnownTotal() int {
	if s.TotalPositions <= 1 {
		return 0
	}
	return s.TotalPositions
}

// ScoreFloor is the lowest score consistent with the furthest position.
func (s *Session) ScoreFloor() (float64, bool) {
	total := s.KnownTotal()
	if total == 0 || s.FurthestPosition <= 0 {
		return 0, false
	}
	return percent(s.FurthestPosition, total), true
}

func (s *Session) ProgressPercent() *float64 {
	total := s.KnownTotal()
	if total == 0 {
		return nil
	}
	v := percent(s.FurthestPosition, total)
	return &v
}

func (s *Session) CurrentPercent() *float64 {
	total := s.KnownTotal()
	if total == 0 {
		return nil
	}
	v := percent(s.CurrentPosition, total)
	return &v
}

func percent(pos, total int) float64 {
	v := float64(pos) / float64(total) * 100
	v = math.Round(v*100) / 100
	return math.Min(v, 100)
}

// PendingNavigation is a one-shot jump request that survives a reload.
type PendingNavigation struct {
	TargetPosition int    `json:"slide"`
	NavigationID   string `json:"navId"`
	FurthestHint   int    `json:"furthest,omitempty"`
	RequestedAt    int64  `json:"timestamp"`
}

// InterceptWindow bounds the period in which reads and writes are rewritten.
type InterceptWindow struct {
	Start  time.Time
	Length time.Duration
}

func (w InterceptWindow) Open(now time.Time) bool {
	if w.Start.IsZero() {
		return false
	}
	return now.Before(w.Start.Add(w.Length))
}

func (w InterceptWindow) End() time.Time {
	return w.Start.Add(w.Length)
}
