package service

import (
	"strings"

	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Rise routes lessons through the location hash (#/lessons/<id>) and lists
// them in the sidebar outline.
type Rise struct{}

const (
	riseLessonLinks = "a.lesson-link"
	riseRoutePrefix = "#/lessons/"
)

func (Rise) Vendor() domain.Vendor { return domain.VendorRise }

func riseSignature(w dom.Window) bool {
	return strings.HasPrefix(w.Hash(), riseRoutePrefix) || len(w.QueryAll(riseLessonLinks)) > 0
}

func (r Rise) Detect(root dom.Window) (domain.Detection, bool) {
	w, ok := findWindow(root, riseSignature)
	if !ok {
		return domain.Detection{}, false
	}
	links := w.QueryAll(riseLessonLinks)
	d := domain.Detection{Vendor: r.Vendor(), Window: w, Total: len(links)}
	hash := w.Hash()
	for i, link := range links {
		href, _ := link.Attr("href")
		if href != "" && strings.HasPrefix(hash, href) {
			d.Current = i + 1
			break
		}
	}
	return d, d.Found()
}

func (Rise) NavigateTo(root dom.Window, target int) bool {
	w, ok := findWindow(root, riseSignature)
	if !ok {
		return false
	}
	links := w.QueryAll(riseLessonLinks)
	if target < 1 || target > len(links) {
		return false
	}
	link := links[target-1]
	if href, ok := link.Attr("href"); ok && strings.HasPrefix(href, riseRoutePrefix) {
		w.SetHash(href)
		return true
	}
	return link.Click() == nil
}
