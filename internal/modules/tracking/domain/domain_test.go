package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlideNumber(t *testing.T) {
	cases := map[string]int{
		"7":          7,
		" 12 ":       12,
		"0_4":        5,
		"slide_9":    9,
		"page-3.htm": 3,
	}
	for in, want := range cases {
		got, ok := ParseSlideNumber(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0", "intro"} {
		_, ok := ParseSlideNumber(in)
		assert.False(t, ok, in)
	}
}

func TestLocationFormatRoundTrip(t *testing.T) {
	f, ok := DetectLocationFormat("2_6")
	require.True(t, ok)
	assert.Equal(t, "2_11", f.Format(12))

	f, ok = DetectLocationFormat("slide_4.html")
	require.True(t, ok)
	assert.Equal(t, "slide_10.html", f.Format(10))

	_, ok = DetectLocationFormat("4")
	assert.False(t, ok)
	assert.Equal(t, "4", LocationFormat{}.Format(4))
}

func TestFurthestIsMonotonic(t *testing.T) {
	s := NewSession("42", "1", time.Unix(0, 0))
	assert.True(t, s.AdvanceFurthest(5))
	assert.False(t, s.AdvanceFurthest(3))
	assert.False(t, s.AdvanceFurthest(5))
	assert.Equal(t, 5, s.FurthestPosition)
}

func TestPendingTargetHoldsFurthestUntilExceeded(t *testing.T) {
	s := NewSession("42", "1", time.Unix(0, 0))
	s.FurthestPosition = 5
	s.Pending = &PendingNavigation{TargetPosition: 12, NavigationID: "n"}

	assert.False(t, s.AdvanceFurthestRespectingTarget(12))
	assert.Equal(t, 5, s.FurthestPosition)
	assert.True(t, s.AdvanceFurthestRespectingTarget(13))
	assert.True(t, s.TagTargetExceeded)
	assert.Equal(t, 13, s.FurthestPosition)
}

func TestPercentagesNeedAKnownTotal(t *testing.T) {
	s := NewSession("42", "1", time.Unix(0, 0))
	s.FurthestPosition = 3
	s.TotalPositions = 1
	assert.Nil(t, s.ProgressPercent())
	_, ok := s.ScoreFloor()
	assert.False(t, ok)

	s.TotalPositions = 4
	s.CurrentPosition = 2
	require.NotNil(t, s.ProgressPercent())
	assert.Equal(t, 75.0, *s.ProgressPercent())
	assert.Equal(t, 50.0, *s.CurrentPercent())

	s.FurthestPosition = 9
	floor, ok := s.ScoreFloor()
	assert.True(t, ok)
	assert.Equal(t, 100.0, floor)
}

func TestInterceptWindow(t *testing.T) {
	start := time.Unix(100, 0)
	w := InterceptWindow{Start: start, Length: 10 * time.Second}
	assert.True(t, w.Open(start.Add(9*time.Second)))
	assert.False(t, w.Open(start.Add(10*time.Second)))
	assert.False(t, InterceptWindow{}.Open(start))
}

func TestShapes(t *testing.T) {
	s12, ok := ShapeFor(APIVersion12)
	require.True(t, ok)
	assert.Equal(t, "cmi.core.lesson_location", s12.LocationField)
	s2004, ok := ShapeFor(APIVersion2004)
	require.True(t, ok)
	assert.Equal(t, "API_1484_11", s2004.ObjectName)
	assert.Equal(t, "cmi.completion_status", s2004.StatusField)
}
