// Package service holds one detector per authoring tool. Detectors read the
// tool's own script state or markup, never the SCORM API.
package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"scormtrack/internal/modules/authoring/domain"
	"scormtrack/internal/platform/dom"
)

type Detector interface {
	Vendor() domain.Vendor
	Detect(root dom.Window) (domain.Detection, bool)
	// NavigateTo reports true only when the tool's own API accepted the jump.
	NavigateTo(root dom.Window, target int) bool
}

// findWindow walks root and its same-origin descendants depth first.
// Cross-origin frames are skipped silently.
func findWindow(root dom.Window, match func(dom.Window) bool) (dom.Window, bool) {
	return walk(root, 0, match)
}

func walk(w dom.Window, depth int, match func(dom.Window) bool) (dom.Window, bool) {
	if w == nil || depth > domain.MaxFrameDepth {
		return nil, false
	}
	if match(w) {
		return w, true
	}
	for _, f := range w.Frames() {
		child, err := f.Window()
		if err != nil {
			continue
		}
		if found, ok := walk(child, depth+1, match); ok {
			return found, true
		}
	}
	return nil, false
}

func hasGlobal(names ...string) func(dom.Window) bool {
	return func(w dom.Window) bool {
		for _, n := range names {
			if _, ok := w.Lookup(n); ok {
				return true
			}
		}
		return false
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func lookupInt(w dom.Window, path string) (int, bool) {
	v, ok := w.Lookup(path)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func callInt(w dom.Window, path string, args ...any) (int, bool) {
	if _, ok := w.Lookup(path); !ok {
		return 0, false
	}
	v, err := w.Call(path, args...)
	if err != nil {
		return 0, false
	}
	return toInt(v)
}

// tryCall invokes path when it exists and reports whether it ran cleanly.
func tryCall(w dom.Window, path string, args ...any) bool {
	if _, ok := w.Lookup(path); !ok {
		return false
	}
	_, err := w.Call(path, args...)
	return err == nil
}
