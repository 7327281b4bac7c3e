package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Storyline exposes its player through GetPlayer and keeps slide state on
// the DS namespace. The slide index there is 0-based.
type Storyline struct{}

func (Storyline) Vendor() domain.Vendor { return domain.VendorStoryline }

func (s Storyline) Detect(root dom.Window) (domain.Detection, bool) {
	w, ok := findWindow(root, hasGlobal("GetPlayer", "DS"))
	if !ok {
		return domain.Detection{}, false
	}
	d := domain.Detection{Vendor: s.Vendor(), Window: w}
	if idx, ok := lookupInt(w, "DS.presentation.currentSlideIndex"); ok && idx >= 0 {
		d.Current = idx + 1
	}
	if total, ok := lookupInt(w, "DS.presentation.slideCount"); ok {
		d.Total = total
	}
	return d, d.Found()
}

func (Storyline) NavigateTo(root dom.Window, target int) bool {
	w, ok := findWindow(root, hasGlobal("GetPlayer", "DS"))
	if !ok {
		return false
	}
	return tryCall(w, "DS.windowManager.jumpToSlide", target-1)
}
