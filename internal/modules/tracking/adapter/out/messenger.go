package out

import (
	"encoding/json"
	"fmt"
	"sync"

	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// Sink receives an encoded host message.
type Sink func(payload []byte) error

// Outbox encodes host messages as JSON and fans them out to sinks for the
// parent and top windows.
type Outbox struct {
	mu          sync.Mutex
	parent      []Sink
	top         []Sink
	topIsParent bool
}

func NewOutbox(topIsParent bool) *Outbox {
	return &Outbox{topIsParent: topIsParent}
}

var _ trackingout.HostMessenger = (*Outbox)(nil)

func (o *Outbox) AddParentSink(s Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parent = append(o.parent, s)
}

func (o *Outbox) AddTopSink(s Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.top = append(o.top, s)
}

func (o *Outbox) PostToParent(msg any) error {
	return o.send(msg, o.sinks(true))
}

func (o *Outbox) PostToTop(msg any) error {
	return o.send(msg, o.sinks(false))
}

func (o *Outbox) TopIsParent() bool {
	return o.topIsParent
}

func (o *Outbox) sinks(parent bool) []Sink {
	o.mu.Lock()
	defer o.mu.Unlock()
	if parent {
		return append([]Sink(nil), o.parent...)
	}
	return append([]Sink(nil), o.top...)
}

func (o *Outbox) send(msg any, sinks []Sink) error {
	if len(sinks) == 0 {
		return fmt.Errorf("no receiver")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	var firstErr error
	for _, s := range sinks {
		if err := s(payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Recorder is a sink that keeps every message, for transcripts and tests.
type Recorder struct {
	mu       sync.Mutex
	messages [][]byte
}

func (r *Recorder) Sink(payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, append([]byte(nil), payload...))
	return nil
}

func (r *Recorder) Messages() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.messages...)
}

// OfType decodes the recorded messages whose type field matches.
func (r *Recorder) OfType(msgType string) []map[string]any {
	out := make([]map[string]any, 0)
	for _, payload := range r.Messages() {
		decoded := map[string]any{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			continue
		}
		if decoded["type"] == msgType {
			out = append(out, decoded)
		}
	}
	return out
}
