package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitsOnly     = regexp.MustCompile(`^\d+$`)
	sceneSlidePair = regexp.MustCompile(`^(\d+)_(\d+)$`)
	embeddedNumber = regexp.MustCompile(`^(\D*?)(\d+)(\D*)$`)
	lastNumber     = regexp.MustCompile(`(\d+)\D*$`)
)

// ParseSlideNumber reads a 1-based position out of a location value: plain
// numbers, 0-based "scene_slide" pairs, or the last number in free text.
func ParseSlideNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if digitsOnly.MatchString(raw) {
		n, err := strconv.Atoi(raw)
		return n, err == nil && n > 0
	}
	if m := sceneSlidePair.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[2])
		return n + 1, err == nil
	}
	if m := lastNumber.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil && n > 0
	}
	return 0, false
}

type LocationFormatKind string

const (
	LocationPlain    LocationFormatKind = "plain"
	LocationTemplate LocationFormatKind = "template"
	LocationScene    LocationFormatKind = "scene"
)

// LocationFormat remembers how a vendor spells its location so corrective
// writes look like the vendor's own.
type LocationFormat struct {
	Kind   LocationFormatKind `json:"kind"`
	Prefix string             `json:"prefix,omitempty"`
	Suffix string             `json:"suffix,omitempty"`
	Scene  string             `json:"scene,omitempty"`
}

// DetectLocationFormat returns false for plain numbers and for values it
// cannot template.
func DetectLocationFormat(raw string) (LocationFormat, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || digitsOnly.MatchString(raw) {
		return LocationFormat{}, false
	}
	if m := sceneSlidePair.FindStringSubmatch(raw); m != nil {
		return LocationFormat{Kind: LocationScene, Scene: m[1]}, true
	}
	if m := embeddedNumber.FindStringSubmatch(raw); m != nil {
		return LocationFormat{Kind: LocationTemplate, Prefix: m[1], Suffix: m[3]}, true
	}
	return LocationFormat{}, false
}

// Format renders the 1-based position.
func (f LocationFormat) Format(pos int) string {
	switch f.Kind {
	case LocationScene:
		return f.Scene + "_" + strconv.Itoa(pos-1)
	case LocationTemplate:
		return f.Prefix + strconv.Itoa(pos) + f.Suffix
	default:
		return strconv.Itoa(pos)
	}
}
