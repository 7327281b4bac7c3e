package domain

// Classify returns every interpretation of raw in decode priority order. At
// most one Base64 interpretation is produced: compressed when the stream
// decompresses into text, plain otherwise.
func Classify(raw string) []Blob {
	out := make([]Blob, 0, 4)
	if obj, ok := parseJSONObject(raw); ok {
		out = append(out, JSONBlob{raw: raw, obj: obj})
	}
	if lz, ok := asLZBase64(raw); ok {
		out = append(out, lz)
	} else if b64, ok := asBase64JSON(raw); ok {
		out = append(out, b64)
	}
	if d, ok := asDelimited(raw); ok {
		out = append(out, d)
	}
	if u, ok := asURLEncoded(raw); ok {
		out = append(out, u)
	}
	return append(out, PlainTextBlob{raw: raw})
}

// Decode returns the first position any interpretation yields.
func Decode(raw string) (Result, bool) {
	if raw == "" {
		return Result{}, false
	}
	for _, b := range Classify(raw) {
		if pos, ok := b.Position(); ok && pos.Current > 0 {
			return Result{Kind: b.Kind(), Current: pos.Current, Furthest: pos.Furthest}, true
		}
	}
	return Result{}, false
}

// ParsePosition is Decode reduced to the current 1-based position.
func ParsePosition(raw string) (int, bool) {
	res, ok := Decode(raw)
	if !ok {
		return 0, false
	}
	return res.Current, true
}

// VisitedFurthest is the furthest 1-based position the blob records as
// visited, for shapes that keep a visited list.
func VisitedFurthest(raw string) (int, bool) {
	res, ok := Decode(raw)
	if !ok || res.Furthest < 1 {
		return 0, false
	}
	return res.Furthest, true
}

// ModifyPosition rewrites raw so content resumes at the 1-based target.
// Unknown or foreign shapes come back byte-identical.
func ModifyPosition(raw string, target int) string {
	if raw == "" || target < 1 {
		return raw
	}
	for _, b := range Classify(raw) {
		if out, ok := b.WithPosition(target); ok {
			return out
		}
	}
	return raw
}
