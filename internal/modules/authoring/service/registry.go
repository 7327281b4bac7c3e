package service

import (
	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

// Registry runs detectors in fixed priority order. The first branded
// detector that finds something wins the tick.
type Registry struct {
	branded []Detector
	generic Detector
}

func NewRegistry() *Registry {
	return &Registry{
		branded: []Detector{
			Storyline{},
			Captivate{},
			ISpring{},
			Rise{},
			Lectora{},
		},
		generic: Generic{},
	}
}

func (r *Registry) Detect(root dom.Window) (domain.Detection, bool) {
	for _, d := range r.branded {
		if found, ok := d.Detect(root); ok {
			return found, true
		}
	}
	return domain.Detection{}, false
}

func (r *Registry) DetectGeneric(root dom.Window) (domain.Detection, bool) {
	return r.generic.Detect(root)
}

// NavigateTo tries every detector's own navigation, branded ones first.
func (r *Registry) NavigateTo(root dom.Window, target int) (domain.Vendor, bool) {
	for _, d := range append(append([]Detector{}, r.branded...), r.generic) {
		if d.NavigateTo(root, target) {
			return d.Vendor(), true
		}
	}
	return domain.VendorNone, false
}
