package domain

import "scormtrack/internal/platform/dom"

type Vendor string

const (
	VendorStoryline Vendor = "storyline"
	VendorCaptivate Vendor = "captivate"
	VendorISpring   Vendor = "ispring"
	VendorRise      Vendor = "rise360"
	VendorLectora   Vendor = "lectora"
	VendorGeneric   Vendor = "generic"
	VendorNone      Vendor = ""
)

// MaxFrameDepth bounds the search through nested same-origin frames.
const MaxFrameDepth = 3

// Detection is one detector's reading. Window is the frame the tool lives
// in and is only valid for the tick that produced it.
type Detection struct {
	Vendor  Vendor
	Window  dom.Window
	Current int
	Total   int
}

func (d Detection) Found() bool {
	return d.Window != nil && (d.Current > 0 || d.Total > 0)
}
