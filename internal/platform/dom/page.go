package dom

import (
	"fmt"
	"strings"

	apperrors "scormtrack/internal/platform/errors"
)

type Page struct {
	globals   map[string]any
	funcs     map[string]Func
	elements  []*Node
	hash      string
	frames    []*ChildFrame
	observers map[int]func()
	nextObs   int
	listeners []func(any)
}

func NewPage() *Page {
	return &Page{
		globals:   map[string]any{},
		funcs:     map[string]Func{},
		observers: map[int]func(){},
	}
}

func (p *Page) Lookup(path string) (any, bool) {
	if fn, ok := p.funcs[path]; ok {
		return fn, true
	}
	if v, ok := p.lookupGlobal(path); ok {
		return v, true
	}
	prefix := path + "."
	for name := range p.funcs {
		if strings.HasPrefix(name, prefix) {
			return Namespace(path), true
		}
	}
	return nil, false
}

// Namespace stands for an object that only carries callable members.
type Namespace string

func (p *Page) lookupGlobal(path string) (any, bool) {
	var cur any = p.globals
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (p *Page) Assign(path string, value any) error {
	parts := strings.Split(path, ".")
	m := p.globals
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
	p.notify()
	return nil
}

func (p *Page) Call(path string, args ...any) (any, error) {
	fn, ok := p.funcs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a function", apperrors.ErrNotFound, path)
	}
	return fn(args...)
}

// Define registers a callable global.
func (p *Page) Define(path string, fn Func) {
	p.funcs[path] = fn
}

func (p *Page) Append(nodes ...*Node) {
	for _, n := range nodes {
		n.page = p
	}
	p.elements = append(p.elements, nodes...)
	p.notify()
}

func (p *Page) QueryAll(selector string) []Element {
	sel := parseSelector(selector)
	out := make([]Element, 0)
	for _, n := range p.elements {
		if sel.matches(n) {
			out = append(out, n)
		}
	}
	return out
}

func (p *Page) Hash() string { return p.hash }

func (p *Page) SetHash(hash string) {
	if hash != "" && !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}
	if p.hash == hash {
		return
	}
	p.hash = hash
	p.notify()
}

func (p *Page) Frames() []Frame {
	out := make([]Frame, 0, len(p.frames))
	for _, f := range p.frames {
		out = append(out, f)
	}
	return out
}

// AddFrame nests child inside p. Cross-origin children refuse window access.
func (p *Page) AddFrame(name string, child *Page, crossOrigin bool) *ChildFrame {
	f := &ChildFrame{name: name, page: child, crossOrigin: crossOrigin}
	p.frames = append(p.frames, f)
	return f
}

// Observe registers fn to run after every mutation. The returned function
// removes it.
func (p *Page) Observe(fn func()) func() {
	p.nextObs++
	id := p.nextObs
	p.observers[id] = fn
	return func() { delete(p.observers, id) }
}

func (p *Page) notify() {
	for _, fn := range p.observers {
		fn()
	}
}

// OnMessage registers a listener for messages posted to this page.
func (p *Page) OnMessage(fn func(msg any)) {
	p.listeners = append(p.listeners, fn)
}

func (p *Page) deliver(msg any) {
	for _, fn := range p.listeners {
		fn(msg)
	}
}

type ChildFrame struct {
	name        string
	page        *Page
	crossOrigin bool
}

func (f *ChildFrame) Name() string { return f.name }

func (f *ChildFrame) Window() (Window, error) {
	if f.crossOrigin {
		return nil, fmt.Errorf("frame %q: %w", f.name, apperrors.ErrCrossOrigin)
	}
	return f.page, nil
}

func (f *ChildFrame) Page() *Page { return f.page }

func (f *ChildFrame) PostMessage(msg any) error {
	f.page.deliver(msg)
	return nil
}

type Node struct {
	TagName     string
	IDAttr      string
	Classes     []string
	Attrs       map[string]string
	TextContent string
	OnClick     func()
	page        *Page
}

func (n *Node) ID() string  { return n.IDAttr }
func (n *Node) Tag() string { return strings.ToLower(n.TagName) }
func (n *Node) Text() string {
	return n.TextContent
}

func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

func (n *Node) Attr(name string) (string, bool) {
	switch name {
	case "id":
		return n.IDAttr, n.IDAttr != ""
	case "class":
		return strings.Join(n.Classes, " "), len(n.Classes) > 0
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// SetClasses replaces the class list and notifies observers.
func (n *Node) SetClasses(classes ...string) {
	n.Classes = classes
	if n.page != nil {
		n.page.notify()
	}
}

func (n *Node) Click() error {
	if n.OnClick == nil {
		return fmt.Errorf("element %s is not clickable", n.Tag())
	}
	n.OnClick()
	return nil
}
