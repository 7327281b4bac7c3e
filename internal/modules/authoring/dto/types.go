package dto

import "scormtrack/internal/platform/dom"

type DetectInput struct {
	Root dom.Window
	// Generic selects the generic fallback detector instead of the branded ones.
	Generic bool
}

type DetectOutput struct {
	Found   bool
	Vendor  string
	Current int
	Total   int
}

type NavigateInput struct {
	Root   dom.Window
	Target int
}

type NavigateOutput struct {
	Navigated bool
	Vendor    string
}
