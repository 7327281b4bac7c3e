package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// The dominant vendor format stores its resume point as "scene_slide" in a
// top-level "resume" field, in the "d" variable array and as a raw last
// slide index "l". All of them are 0-based.
var (
	resumeField      = regexp.MustCompile(`"resume"\s*:\s*"(\d+)_(\d+)"`)
	resumeValue      = regexp.MustCompile(`^"(\d+)_(\d+)"$`)
	resumeEntry      = regexp.MustCompile(`\{\s*"n"\s*:\s*"Resume"\s*,\s*"v"\s*:\s*"(\d+)_(\d+)"`)
	resumeEntryRev   = regexp.MustCompile(`"v"\s*:\s*"(\d+)_(\d+)"\s*,\s*"n"\s*:\s*"Resume"`)
	resumeEntryStart = regexp.MustCompile(`\{\s*"n"\s*:\s*"Resume"`)
	lastIndexValue   = regexp.MustCompile(`^\d+$`)
)

const lastIndexKey = "l"

// hasResumeSignature gates every free-text read and every rewrite of
// compressed blobs. Unrelated JSON from other vendors can contain digit
// pairs that would otherwise pass for a scene_slide value.
func hasResumeSignature(text string) bool {
	return resumeField.MatchString(text) || resumeEntryStart.MatchString(text) || resumeEntryRev.MatchString(text)
}

// rewriteResume points the resume fields at the 0-based slide index while
// keeping scene numbers. In a JSON object only the top-level "resume", "l"
// and the Resume entries of "d" move; free text only has its resume
// patterns rewritten.
func rewriteResume(text string, index int) string {
	value := strconv.Itoa(index)
	if _, ok := topLevelSpans(text); !ok {
		text = replaceGroup(resumeField, text, 2, value)
		text = replaceGroup(resumeEntry, text, 2, value)
		return replaceGroup(resumeEntryRev, text, 2, value)
	}
	text = rewriteTopLevel(text, resumeKey, func(raw string) (string, bool) {
		if !resumeValue.MatchString(raw) {
			return "", false
		}
		return replaceGroup(resumeValue, raw, 2, value), true
	})
	text = rewriteTopLevel(text, variablesKey, func(raw string) (string, bool) {
		if !strings.HasPrefix(raw, "[") {
			return "", false
		}
		raw = replaceGroup(resumeEntry, raw, 2, value)
		return replaceGroup(resumeEntryRev, raw, 2, value), true
	})
	return rewriteTopLevel(text, lastIndexKey, func(raw string) (string, bool) {
		return value, lastIndexValue.MatchString(raw)
	})
}

// replaceGroup substitutes capture group g of every match of re.
func replaceGroup(re *regexp.Regexp, text string, g int, value string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	last := 0
	for _, m := range matches {
		start, end := m[2*g], m[2*g+1]
		if start < 0 {
			continue
		}
		out = append(out, text[last:start]...)
		out = append(out, value...)
		last = end
	}
	out = append(out, text[last:]...)
	return string(out)
}
