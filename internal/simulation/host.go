package simulation

import (
	"scormtrack/internal/modules/tracking/domain"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/dom"
)

// pageHost publishes the SCORM API as a global on a page, running the
// install-time hook before content can see the object.
type pageHost struct {
	page *dom.Page
	hook func(trackingout.SCORMAPI, domain.APIVersion) trackingout.SCORMAPI
}

func newPageHost(page *dom.Page) *pageHost {
	return &pageHost{page: page}
}

var _ trackingout.APIHost = (*pageHost)(nil)

func (h *pageHost) Lookup() (trackingout.SCORMAPI, domain.APIVersion, bool) {
	for _, version := range []domain.APIVersion{domain.APIVersion2004, domain.APIVersion12} {
		shape, _ := domain.ShapeFor(version)
		v, ok := h.page.Lookup(shape.ObjectName)
		if !ok {
			continue
		}
		if api, ok := v.(trackingout.SCORMAPI); ok {
			return api, version, true
		}
	}
	return nil, domain.APIVersionUnset, false
}

func (h *pageHost) OnAssign(hook func(trackingout.SCORMAPI, domain.APIVersion) trackingout.SCORMAPI) {
	h.hook = hook
}

func (h *pageHost) Install(version domain.APIVersion, api trackingout.SCORMAPI) {
	shape, ok := domain.ShapeFor(version)
	if !ok {
		return
	}
	_ = h.page.Assign(shape.ObjectName, api)
}

// publish assigns the API object, as the host page does when it exposes
// the SCORM runtime.
func (h *pageHost) publish(version domain.APIVersion, api trackingout.SCORMAPI) {
	if h.hook != nil {
		api = h.hook(api, version)
	}
	h.Install(version, api)
}
