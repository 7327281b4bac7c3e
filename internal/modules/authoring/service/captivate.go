package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Captivate publishes system variables through cpAPIInterface.
// cpInfoCurrentSlide is 1-based, cpCmndGotoSlide takes a 0-based index.
type Captivate struct{}

func (Captivate) Vendor() domain.Vendor { return domain.VendorCaptivate }

func (c Captivate) Detect(root dom.Window) (domain.Detection, bool) {
	w, ok := findWindow(root, hasGlobal("cpAPIInterface", "cpInfoCurrentSlide"))
	if !ok {
		return domain.Detection{}, false
	}
	d := domain.Detection{Vendor: c.Vendor(), Window: w}
	d.Current = captivateVar(w, "cpInfoCurrentSlide")
	d.Total = captivateVar(w, "cpInfoSlideCount")
	return d, d.Found()
}

func captivateVar(w dom.Window, name string) int {
	if n, ok := callInt(w, "cpAPIInterface.getVariableValue", name); ok {
		return n
	}
	if n, ok := lookupInt(w, name); ok {
		return n
	}
	return 0
}

func (Captivate) NavigateTo(root dom.Window, target int) bool {
	w, ok := findWindow(root, hasGlobal("cpAPIInterface", "cpInfoCurrentSlide"))
	if !ok {
		return false
	}
	if tryCall(w, "cpAPIInterface.setVariableValue", "cpCmndGotoSlide", target-1) {
		return true
	}
	if _, ok := w.Lookup("cpCmndGotoSlide"); ok {
		return w.Assign("cpCmndGotoSlide", target-1) == nil
	}
	return false
}
