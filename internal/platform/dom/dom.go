// Package dom models the parts of a content frame the tracking engine reads:
// script globals, callable functions, elements, the location hash and nested
// frames. Real frames are reached through adapters; Page is the in-memory
// implementation used by the simulator and tests.
package dom

// Func is a callable script global.
type Func func(args ...any) (any, error)

type Window interface {
	// Lookup resolves a dotted global path such as "cpAPIInterface" or
	// "DS.presentation.slideCount".
	Lookup(path string) (any, bool)
	Assign(path string, value any) error
	Call(path string, args ...any) (any, error)
	QueryAll(selector string) []Element
	Hash() string
	SetHash(hash string)
	Frames() []Frame
}

// Frame is a nested frame. Window fails with apperrors.ErrCrossOrigin when
// the frame belongs to another origin.
type Frame interface {
	Name() string
	Window() (Window, error)
	// PostMessage delivers msg to the frame whatever its origin.
	PostMessage(msg any) error
}

type Element interface {
	ID() string
	Tag() string
	HasClass(name string) bool
	Attr(name string) (string, bool)
	Text() string
	Click() error
}
