package out

import (
	"context"

	authoringdto "scormtrack/internal/modules/authoring/dto"
	authoringin "scormtrack/internal/modules/authoring/port/in"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/dom"
)

// VendorBridgeAdapter points the vendor detectors at one content window.
type VendorBridgeAdapter struct {
	vendors authoringin.Usecase
	root    dom.Window
}

func NewVendorBridgeAdapter(vendors authoringin.Usecase, root dom.Window) trackingout.VendorBridge {
	return &VendorBridgeAdapter{vendors: vendors, root: root}
}

func (a *VendorBridgeAdapter) Detect() (trackingout.VendorSignal, bool) {
	return a.detect(false)
}

func (a *VendorBridgeAdapter) DetectGeneric() (trackingout.VendorSignal, bool) {
	return a.detect(true)
}

func (a *VendorBridgeAdapter) detect(generic bool) (trackingout.VendorSignal, bool) {
	out, err := a.vendors.Detect(context.Background(), authoringdto.DetectInput{Root: a.root, Generic: generic})
	if err != nil || !out.Found {
		return trackingout.VendorSignal{}, false
	}
	return trackingout.VendorSignal{Vendor: out.Vendor, Current: out.Current, Total: out.Total}, true
}

func (a *VendorBridgeAdapter) NavigateTo(target int) (string, bool) {
	out, err := a.vendors.NavigateTo(context.Background(), authoringdto.NavigateInput{Root: a.root, Target: target})
	if err != nil {
		return "", false
	}
	return out.Vendor, out.Navigated
}
