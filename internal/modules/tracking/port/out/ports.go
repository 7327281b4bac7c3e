package out

import (
	"context"

	"scormtrack/internal/modules/tracking/domain"
)

// SCORMAPI is the four-verb surface shared by SCORM 1.2 and 2004 after
// normalisation. Values follow the SCORM convention of "true"/"false"
// strings for verb results.
type SCORMAPI interface {
	Initialize(arg string) string
	GetValue(element string) string
	SetValue(element, value string) string
	Commit(arg string) string
}

// APIHost is where content looks for its SCORM API object.
type APIHost interface {
	Lookup() (SCORMAPI, domain.APIVersion, bool)
	// OnAssign registers a hook run when the API object is first assigned.
	// The hook's return value replaces the object content will see.
	OnAssign(func(SCORMAPI, domain.APIVersion) SCORMAPI)
	Install(domain.APIVersion, SCORMAPI)
}

// KeyValueStore is one persistence tier. Any method may fail when the
// backing storage is unavailable.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type HostMessenger interface {
	PostToParent(msg any) error
	PostToTop(msg any) error
	TopIsParent() bool
}

// ContentFrame is the embedded frame that hosts the course.
type ContentFrame interface {
	// Reload reloads the frame in place and reports whether it could.
	Reload() bool
	// ReloadPage reloads the whole hosting page.
	ReloadPage() error
	InnerFrames() []InnerFrame
	// ObserveMutations calls fn after structural changes to the content.
	ObserveMutations(fn func()) (stop func())
}

type InnerFrame interface {
	// NavigateTo drives a vendor tool reachable inside the frame.
	NavigateTo(target int) bool
	PostMessage(msg any) error
}

type VendorSignal struct {
	Vendor  string
	Current int
	Total   int
}

type VendorBridge interface {
	Detect() (VendorSignal, bool)
	DetectGeneric() (VendorSignal, bool)
	NavigateTo(target int) (string, bool)
}

// KindDelimited is the codec kind of Captivate-style key=value blobs.
const KindDelimited = "delimited"

type CodecResult struct {
	Kind     string
	Current  int
	Furthest int
}

type SuspendDataCodec interface {
	Decode(raw string) (CodecResult, bool)
	Modify(raw string, target int) string
}
