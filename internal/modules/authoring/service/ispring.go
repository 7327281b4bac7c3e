package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

type ISpring struct{}

func (ISpring) Vendor() domain.Vendor { return domain.VendorISpring }

var ispringSignature = hasGlobal("ispringPresentationConnector", "iSpring.player.currentSlideIndex")

func (i ISpring) Detect(root dom.Window) (domain.Detection, bool) {
	w, ok := findWindow(root, ispringSignature)
	if !ok {
		return domain.Detection{}, false
	}
	d := domain.Detection{Vendor: i.Vendor(), Window: w}
	if idx, ok := callInt(w, "iSpring.player.currentSlideIndex"); ok && idx >= 0 {
		d.Current = idx + 1
	}
	if total, ok := callInt(w, "iSpring.player.slidesCount"); ok {
		d.Total = total
	}
	return d, d.Found()
}

func (ISpring) NavigateTo(root dom.Window, target int) bool {
	w, ok := findWindow(root, ispringSignature)
	if !ok {
		return false
	}
	return tryCall(w, "iSpring.player.gotoSlide", target-1)
}
