package domain

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// JSONBlob is suspend data stored as a plain JSON object.
type JSONBlob struct {
	raw string
	obj map[string]any
}

func (b JSONBlob) Kind() Kind  { return KindJSON }
func (b JSONBlob) Raw() string { return b.raw }

func (b JSONBlob) Position() (Position, bool) {
	n, ok := positionFromFields(b.obj)
	return Position{Current: n}, ok
}

func (b JSONBlob) WithPosition(target int) (string, bool) {
	out := rewriteJSON(b.raw, target)
	return out, out != b.raw
}

// LZBase64Blob is LZ-string compressed text in the Base64 alphabet.
type LZBase64Blob struct {
	raw  string
	text string
}

func (b LZBase64Blob) Kind() Kind  { return KindLZBase64 }
func (b LZBase64Blob) Raw() string { return b.raw }

// Text is the decompressed payload.
func (b LZBase64Blob) Text() string { return b.text }

func (b LZBase64Blob) Position() (Position, bool) {
	return decodeInnerText(b.text)
}

func (b LZBase64Blob) WithPosition(target int) (string, bool) {
	if !hasResumeSignature(b.text) {
		return b.raw, false
	}
	rewritten := rewriteResume(b.text, target-1)
	if rewritten == b.text {
		return b.raw, false
	}
	return CompressToBase64(rewritten), true
}

// Base64JSONBlob is Base64 encoded text, usually JSON, without compression.
type Base64JSONBlob struct {
	raw      string
	text     string
	encoding *base64.Encoding
}

func (b Base64JSONBlob) Kind() Kind  { return KindBase64JSON }
func (b Base64JSONBlob) Raw() string { return b.raw }

func (b Base64JSONBlob) Position() (Position, bool) {
	return decodeInnerText(b.text)
}

func (b Base64JSONBlob) WithPosition(target int) (string, bool) {
	if _, ok := parseJSONObject(b.text); !ok {
		return b.raw, false
	}
	out := rewriteJSON(b.text, target)
	if out == b.text {
		return b.raw, false
	}
	return b.encoding.EncodeToString([]byte(out)), true
}

// rewriteJSON touches resume fields only when the text carries the resume
// signature, then the generic position fields.
func rewriteJSON(text string, target int) string {
	if hasResumeSignature(text) {
		text = rewriteResume(text, target-1)
	}
	return rewriteFields(text, target)
}

// decodeInnerText reads text recovered from a Base64 blob: JSON fields
// first, then gated free-text patterns.
func decodeInnerText(text string) (Position, bool) {
	if obj, ok := parseJSONObject(text); ok {
		if n, ok := positionFromFields(obj); ok {
			return Position{Current: n}, true
		}
	}
	if !hasResumeSignature(text) {
		return Position{}, false
	}
	return PlainTextBlob{raw: text}.Position()
}

var (
	csToken = regexp.MustCompile(`(^|,)\s*cs=(\d+)`)
	vsToken = regexp.MustCompile(`(^|,)\s*vs=([\d:]*)`)
)

// DelimitedBlob is the compact comma separated key=value format with a
// 0-based "cs" current slide and a colon separated "vs" visited list.
type DelimitedBlob struct {
	raw string
}

func (b DelimitedBlob) Kind() Kind  { return KindDelimited }
func (b DelimitedBlob) Raw() string { return b.raw }

func (b DelimitedBlob) Position() (Position, bool) {
	m := csToken.FindStringSubmatch(b.raw)
	if m == nil {
		return Position{}, false
	}
	cs, err := strconv.Atoi(m[2])
	if err != nil {
		return Position{}, false
	}
	pos := Position{Current: cs + 1}
	if furthest, ok := b.Visited(); ok {
		pos.Furthest = furthest
	}
	return pos, true
}

// Visited returns the furthest 1-based slide from the "vs" token.
func (b DelimitedBlob) Visited() (int, bool) {
	m := vsToken.FindStringSubmatch(b.raw)
	if m == nil || m[2] == "" {
		return 0, false
	}
	best := -1
	for _, part := range strings.Split(m[2], ":") {
		n, err := strconv.Atoi(part)
		if err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		return 0, false
	}
	return best + 1, true
}

// CurrentToken is the raw "cs" value, used to spot unchanged resends.
func (b DelimitedBlob) CurrentToken() string {
	m := csToken.FindStringSubmatch(b.raw)
	if m == nil {
		return ""
	}
	return m[2]
}

func (b DelimitedBlob) WithPosition(target int) (string, bool) {
	out := replaceGroup(csToken, b.raw, 2, strconv.Itoa(target-1))
	return out, out != b.raw
}

var queryPositionKeys = []string{"slide", "current", "page"}

var queryPositionValue = map[string]*regexp.Regexp{
	"slide":   regexp.MustCompile(`(^|&)slide=(\d+)`),
	"current": regexp.MustCompile(`(^|&)current=(\d+)`),
	"page":    regexp.MustCompile(`(^|&)page=(\d+)`),
}

// URLEncodedBlob is an ampersand delimited query string.
type URLEncodedBlob struct {
	raw    string
	values url.Values
}

func (b URLEncodedBlob) Kind() Kind  { return KindURLEncoded }
func (b URLEncodedBlob) Raw() string { return b.raw }

func (b URLEncodedBlob) Position() (Position, bool) {
	if _, n, ok := b.positionKey(); ok {
		return Position{Current: n}, true
	}
	return Position{}, false
}

func (b URLEncodedBlob) positionKey() (string, int, bool) {
	for _, key := range queryPositionKeys {
		if n, err := strconv.Atoi(strings.TrimSpace(b.values.Get(key))); err == nil && n > 0 {
			return key, n, true
		}
	}
	return "", 0, false
}

// WithPosition rewrites the first occurrence of the key Position read and
// leaves every other parameter alone.
func (b URLEncodedBlob) WithPosition(target int) (string, bool) {
	key, _, ok := b.positionKey()
	if !ok {
		return b.raw, false
	}
	m := queryPositionValue[key].FindStringSubmatchIndex(b.raw)
	if m == nil {
		return b.raw, false
	}
	out := b.raw[:m[4]] + strconv.Itoa(target) + b.raw[m[5]:]
	return out, out != b.raw
}

var (
	textSceneSlide = regexp.MustCompile(`(?i)(?:resume|state|position|bookmark)["']?\s*[:=]\s*["']?(\d+)_(\d+)`)
	textPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)resume["']?\s*[:=]\s*["']?(\d+)`),
		regexp.MustCompile(`currentSlide["']?\s*[:=]\s*["']?(\d+)`),
		regexp.MustCompile(`CurrentSlideIndex["']?\s*[:=]\s*["']?(\d+)`),
		regexp.MustCompile(`(?:^|[^A-Za-z])slide["']?\s*[:=]\s*["']?(\d+)`),
	}
)

// PlainTextBlob is anything else. Matches are 0-based.
type PlainTextBlob struct {
	raw string
}

func (b PlainTextBlob) Kind() Kind  { return KindPlainText }
func (b PlainTextBlob) Raw() string { return b.raw }

func (b PlainTextBlob) Position() (Position, bool) {
	if m := textSceneSlide.FindStringSubmatch(b.raw); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			return Position{Current: n + 1}, true
		}
	}
	for _, re := range textPatterns {
		m := re.FindStringSubmatch(b.raw)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Position{Current: n + 1}, true
		}
	}
	return Position{}, false
}

func (b PlainTextBlob) WithPosition(int) (string, bool) { return b.raw, false }

var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/]{20,}={0,3}$`)

func asLZBase64(raw string) (LZBase64Blob, bool) {
	if !base64Shape.MatchString(raw) {
		return LZBase64Blob{}, false
	}
	text, ok := DecompressFromBase64(raw)
	if !ok || !plausibleText(text) || !structured(text) {
		return LZBase64Blob{}, false
	}
	return LZBase64Blob{raw: raw, text: text}, true
}

func asBase64JSON(raw string) (Base64JSONBlob, bool) {
	if !base64Shape.MatchString(raw) {
		return Base64JSONBlob{}, false
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		decoded, err := enc.DecodeString(raw)
		if err != nil {
			continue
		}
		text := string(decoded)
		if !plausibleText(text) {
			return Base64JSONBlob{}, false
		}
		return Base64JSONBlob{raw: raw, text: text, encoding: enc}, true
	}
	return Base64JSONBlob{}, false
}

func asDelimited(raw string) (DelimitedBlob, bool) {
	if !csToken.MatchString(raw) {
		return DelimitedBlob{}, false
	}
	return DelimitedBlob{raw: raw}, true
}

func asURLEncoded(raw string) (URLEncodedBlob, bool) {
	if !strings.Contains(raw, "=") || strings.ContainsAny(raw, "{}\n ") {
		return URLEncodedBlob{}, false
	}
	values, err := url.ParseQuery(raw)
	if err != nil || len(values) == 0 {
		return URLEncodedBlob{}, false
	}
	return URLEncodedBlob{raw: raw, values: values}, true
}

// plausibleText rejects decoder output that is binary garbage: at least 90%
// of the characters must be printable ASCII or whitespace.
func plausibleText(s string) bool {
	if len(s) < 4 {
		return false
	}
	total, good := 0, 0
	for _, r := range s {
		total++
		if (r >= 0x20 && r < 0x7f) || r == '\t' || r == '\n' || r == '\r' {
			good++
		}
	}
	return good*10 >= total*9
}

// structured reports whether decompressed text looks like a persistence
// payload rather than a lucky decode of unrelated Base64.
func structured(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") || strings.ContainsAny(t, ":=")
}

// Text is the decoded payload.
func (b Base64JSONBlob) Text() string { return b.text }
