package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var sceneSlideValue = regexp.MustCompile(`^\s*(\d+)_(\d+)\s*$`)

func parseJSONObject(text string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	obj := map[string]any{}
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	return obj, true
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// sceneSlide returns the 1-based slide of a "scene_slide" value.
func sceneSlide(v any) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	m := sceneSlideValue.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	slide, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return slide + 1, true
}

// Top-level keys positionField may report besides the direct numeric ones.
const (
	bookmarkKey   = "bookmark"
	resumeKey     = "resume"
	variablesKey  = "d"
	slideIndexKey = "CurrentSlideIndex"
)

var directKeys = []string{"currentSlide", "slide", "current", "position"}

// positionFromFields extracts a 1-based position from a decoded JSON object.
// Direct numeric fields are 1-based; scene_slide values and *Index
// variables are 0-based.
func positionFromFields(obj map[string]any) (int, bool) {
	_, n, ok := positionField(obj)
	return n, ok
}

// positionField is positionFromFields that also names the field it read.
// Every key but slideIndexKey is a top-level key of obj.
func positionField(obj map[string]any) (string, int, bool) {
	for _, key := range directKeys {
		if n, ok := intValue(obj[key]); ok && n > 0 {
			return key, n, true
		}
	}
	switch b := obj[bookmarkKey].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(b)); err == nil && n >= 0 {
			return bookmarkKey, n + 1, true
		}
	case json.Number:
		if n, ok := intValue(b); ok && n > 0 {
			return bookmarkKey, n, true
		}
	}
	if n, ok := sceneSlide(obj[resumeKey]); ok {
		return resumeKey, n, true
	}
	if entries, ok := obj[variablesKey].([]any); ok {
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok || entry["n"] != "Resume" {
				continue
			}
			if n, ok := sceneSlide(entry["v"]); ok {
				return variablesKey, n, true
			}
		}
	}
	if n, ok := findSlideIndex(obj, 0); ok {
		return slideIndexKey, n + 1, true
	}
	return "", 0, false
}

func findSlideIndex(v any, depth int) (int, bool) {
	if depth > 4 {
		return 0, false
	}
	switch t := v.(type) {
	case map[string]any:
		if n, ok := intValue(t["CurrentSlideIndex"]); ok && n >= 0 {
			return n, true
		}
		if t["name"] == "CurrentSlideIndex" || t["n"] == "CurrentSlideIndex" {
			for _, k := range []string{"value", "v"} {
				if n, ok := intValue(t[k]); ok && n >= 0 {
					return n, true
				}
			}
		}
		for _, child := range t {
			if n, ok := findSlideIndex(child, depth+1); ok {
				return n, true
			}
		}
	case []any:
		for _, child := range t {
			if n, ok := findSlideIndex(child, depth+1); ok {
				return n, true
			}
		}
	}
	return 0, false
}

var slideIndexVarPattern = regexp.MustCompile(`"CurrentSlideIndex"(\s*:\s*"?)(\d+)`)

// rewriteFields rewrites the one position field positionField reads. Other
// fields, nested objects with look-alike keys included, keep their bytes and
// key order.
func rewriteFields(text string, target int) string {
	obj, ok := parseJSONObject(text)
	if !ok {
		return text
	}
	key, _, ok := positionField(obj)
	if !ok {
		return text
	}
	switch key {
	case bookmarkKey:
		return rewriteTopLevel(text, key, func(raw string) (string, bool) {
			if strings.HasPrefix(raw, `"`) {
				return strconv.Quote(strconv.Itoa(target - 1)), true
			}
			return strconv.Itoa(target), true
		})
	case slideIndexKey:
		return replaceGroup(slideIndexVarPattern, text, 2, strconv.Itoa(target-1))
	case resumeKey, variablesKey:
		// scene_slide fields belong to rewriteResume.
		return text
	}
	return rewriteTopLevel(text, key, func(raw string) (string, bool) {
		if strings.HasPrefix(raw, `"`) {
			return strconv.Quote(strconv.Itoa(target)), true
		}
		return strconv.Itoa(target), true
	})
}

// span is the byte range of one value inside JSON text.
type span struct {
	start, end int
}

// topLevelSpans maps every top-level key of a JSON object to the bytes of
// its value. A repeated key maps to its last value, as when decoding.
func topLevelSpans(text string) (map[string]span, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}
	out := map[string]span{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		value := bytes.TrimLeft(raw, " \t\r\n")
		end := int(dec.InputOffset())
		start := end - len(value)
		if start < 0 || end > len(text) || text[start:end] != string(value) {
			return nil, false
		}
		out[key] = span{start: start, end: end}
	}
	return out, true
}

// rewriteTopLevel replaces the value of a top-level key with fn's result.
// Text that is not a JSON object, lacks the key, or is refused by fn comes
// back unchanged.
func rewriteTopLevel(text, key string, fn func(raw string) (string, bool)) string {
	spans, ok := topLevelSpans(text)
	if !ok {
		return text
	}
	sp, ok := spans[key]
	if !ok {
		return text
	}
	value, ok := fn(text[sp.start:sp.end])
	if !ok {
		return text
	}
	return text[:sp.start] + value + text[sp.end:]
}
