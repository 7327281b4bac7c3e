package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

func captivatePage(current, total int) (*dom.Page, map[string]any) {
	vars := map[string]any{"cpInfoCurrentSlide": current, "cpInfoSlideCount": total}
	page := dom.NewPage()
	page.Define("cpAPIInterface.getVariableValue", func(args ...any) (any, error) {
		return vars[args[0].(string)], nil
	})
	page.Define("cpAPIInterface.setVariableValue", func(args ...any) (any, error) {
		vars[args[0].(string)] = args[1]
		return nil, nil
	})
	return page, vars
}

func TestCaptivateDetectAndNavigate(t *testing.T) {
	t.Parallel()
	page, vars := captivatePage(3, 10)
	r := NewRegistry()

	d, ok := r.Detect(page)
	require.True(t, ok)
	assert.Equal(t, domain.VendorCaptivate, d.Vendor)
	assert.Equal(t, 3, d.Current)
	assert.Equal(t, 10, d.Total)

	vendor, ok := r.NavigateTo(page, 7)
	require.True(t, ok)
	assert.Equal(t, domain.VendorCaptivate, vendor)
	assert.Equal(t, 6, vars["cpCmndGotoSlide"])
}

func TestDetectorsSkipCrossOriginFrames(t *testing.T) {
	t.Parallel()
	inner, _ := captivatePage(2, 5)

	blocked := dom.NewPage()
	blocked.AddFrame("player", inner, true)
	_, ok := NewRegistry().Detect(blocked)
	assert.False(t, ok)

	open := dom.NewPage()
	open.AddFrame("player", inner, false)
	d, ok := NewRegistry().Detect(open)
	require.True(t, ok)
	assert.Equal(t, 2, d.Current)
	assert.Same(t, inner, d.Window)
}

func TestStorylineWinsOverGeneric(t *testing.T) {
	t.Parallel()
	page := dom.NewPage()
	require.NoError(t, page.Assign("DS.presentation.currentSlideIndex", 4))
	require.NoError(t, page.Assign("DS.presentation.slideCount", 12))
	require.NoError(t, page.Assign("currentSlide", 1))
	jumped := -1
	page.Define("DS.windowManager.jumpToSlide", func(args ...any) (any, error) {
		jumped = args[0].(int)
		return nil, nil
	})

	r := NewRegistry()
	d, ok := r.Detect(page)
	require.True(t, ok)
	assert.Equal(t, domain.VendorStoryline, d.Vendor)
	assert.Equal(t, 5, d.Current)

	_, ok = r.NavigateTo(page, 9)
	require.True(t, ok)
	assert.Equal(t, 8, jumped)
}

func TestRiseHashRouting(t *testing.T) {
	t.Parallel()
	page := dom.NewPage()
	for _, id := range []string{"a", "b", "c"} {
		page.Append(&dom.Node{TagName: "a", Classes: []string{"lesson-link"}, Attrs: map[string]string{"href": "#/lessons/" + id}})
	}
	page.SetHash("#/lessons/b")

	d, ok := Rise{}.Detect(page)
	require.True(t, ok)
	assert.Equal(t, 2, d.Current)
	assert.Equal(t, 3, d.Total)

	assert.True(t, Rise{}.NavigateTo(page, 3))
	assert.Equal(t, "#/lessons/c", page.Hash())
	assert.False(t, Rise{}.NavigateTo(page, 9))
}

func TestLectoraMetaSignature(t *testing.T) {
	t.Parallel()
	page := dom.NewPage()
	page.Append(&dom.Node{TagName: "meta", Attrs: map[string]string{"name": "generator", "content": "Lectora 21"}})
	page.Define("VarCurrentPageNumber.getValue", func(...any) (any, error) { return "4", nil })
	page.Define("VarTotalNumberOfPages.getValue", func(...any) (any, error) { return 20.0, nil })

	d, ok := Lectora{}.Detect(page)
	require.True(t, ok)
	assert.Equal(t, 4, d.Current)
	assert.Equal(t, 20, d.Total)
}

func TestGenericReportsTotalWithoutCurrent(t *testing.T) {
	t.Parallel()
	page := dom.NewPage()
	for i := 0; i < 4; i++ {
		page.Append(&dom.Node{TagName: "div", Classes: []string{"slide"}})
	}
	r := NewRegistry()
	_, ok := r.Detect(page)
	assert.False(t, ok, "no branded tool present")

	d, ok := r.DetectGeneric(page)
	require.True(t, ok)
	assert.Equal(t, 0, d.Current)
	assert.Equal(t, 4, d.Total)
}

func TestNavigateWithoutAnyToolFails(t *testing.T) {
	t.Parallel()
	_, ok := NewRegistry().NavigateTo(dom.NewPage(), 3)
	assert.False(t, ok)
}
