package domain

type Kind string

const (
	KindJSON       Kind = "json"
	KindLZBase64   Kind = "lz_base64"
	KindBase64JSON Kind = "base64_json"
	KindDelimited  Kind = "delimited"
	KindURLEncoded Kind = "url_encoded"
	KindPlainText  Kind = "plain_text"
)

// Position is what a blob says about the learner. Both values are 1-based;
// zero means the blob does not carry that signal.
type Position struct {
	Current  int
	Furthest int
}

// Blob is one interpretation of an opaque suspend-data string.
type Blob interface {
	Kind() Kind
	Raw() string
	// Position decodes the resume point.
	Position() (Position, bool)
	// WithPosition re-encodes the blob so content resumes at target. It
	// reports false when this variant cannot or must not touch the blob.
	WithPosition(target int) (string, bool)
}

// Result is the outcome of decoding a blob.
type Result struct {
	Kind     Kind
	Current  int
	Furthest int
}
