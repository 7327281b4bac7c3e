package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Generic looks for common variable names and slide-like markup. It can
// report a total even when the current position is unknown.
type Generic struct{}

var (
	genericCurrent = []struct {
		name      string
		zeroBased bool
	}{
		{"currentSlide", false},
		{"currentPage", false},
		{"slideIndex", true},
		{"currentSlideIndex", true},
	}
	genericTotal    = []string{"totalSlides", "slideCount", "numSlides", "totalPages", "pageCount"}
	genericSlides   = ".slide, .page, section[class*=slide]"
	genericNavCalls = []struct {
		name      string
		zeroBased bool
	}{
		{"goToSlide", false},
		{"gotoSlide", false},
		{"goToPage", false},
		{"showSlide", true},
	}
)

func (Generic) Vendor() domain.Vendor { return domain.VendorGeneric }

func (g Generic) Detect(root dom.Window) (domain.Detection, bool) {
	var best domain.Detection
	_, _ = findWindow(root, func(w dom.Window) bool {
		d := g.read(w)
		if d.Found() && (best.Window == nil || (best.Current == 0 && d.Current > 0)) {
			best = d
		}
		return best.Current > 0
	})
	return best, best.Found()
}

func (g Generic) read(w dom.Window) domain.Detection {
	d := domain.Detection{Vendor: g.Vendor(), Window: w}
	for _, c := range genericCurrent {
		n, ok := lookupInt(w, c.name)
		if !ok || n < 0 {
			continue
		}
		if c.zeroBased {
			n++
		}
		if n > 0 {
			d.Current = n
			break
		}
	}
	for _, name := range genericTotal {
		if n, ok := lookupInt(w, name); ok && n > 0 {
			d.Total = n
			break
		}
	}
	slides := w.QueryAll(genericSlides)
	if d.Total == 0 && len(slides) > 1 {
		d.Total = len(slides)
	}
	if d.Current == 0 {
		for i, el := range slides {
			if el.HasClass("active") || el.HasClass("current") {
				d.Current = i + 1
				break
			}
		}
	}
	return d
}

func (Generic) NavigateTo(root dom.Window, target int) bool {
	navigated := false
	_, _ = findWindow(root, func(w dom.Window) bool {
		for _, c := range genericNavCalls {
			arg := target
			if c.zeroBased {
				arg--
			}
			if tryCall(w, c.name, arg) {
				navigated = true
				return true
			}
		}
		return false
	})
	return navigated
}
