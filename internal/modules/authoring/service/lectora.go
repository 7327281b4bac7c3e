package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Lectora titles carry a generator meta tag and expose page variables
// through Var* objects. Page numbers are 1-based.
type Lectora struct{}

func (Lectora) Vendor() domain.Vendor { return domain.VendorLectora }

func lectoraSignature(w dom.Window) bool {
	if len(w.QueryAll(`meta[name=generator][content*=Lectora]`)) > 0 {
		return true
	}
	_, ok := w.Lookup("trivExitPage")
	return ok
}

func (l Lectora) Detect(root dom.Window) (domain.Detection, bool) {
	w, ok := findWindow(root, lectoraSignature)
	if !ok {
		return domain.Detection{}, false
	}
	d := domain.Detection{Vendor: l.Vendor(), Window: w}
	if n, ok := callInt(w, "VarCurrentPageNumber.getValue"); ok {
		d.Current = n
	}
	if n, ok := callInt(w, "VarTotalNumberOfPages.getValue"); ok {
		d.Total = n
	}
	return d, d.Found()
}

func (Lectora) NavigateTo(root dom.Window, target int) bool {
	w, ok := findWindow(root, lectoraSignature)
	if !ok {
		return false
	}
	if tryCall(w, "trivGoToPage", target) {
		return true
	}
	pages := w.QueryAll(".toc-page")
	if target >= 1 && target <= len(pages) {
		return pages[target-1].Click() == nil
	}
	return false
}
