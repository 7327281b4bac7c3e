package out

import (
	"context"
	"errors"

	authoringdto "scormtrack/internal/modules/authoring/dto"
	authoringin "scormtrack/internal/modules/authoring/port/in"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/dom"
)

var errPageReloadUnsupported = errors.New("page reload unsupported")

// DOMFrame exposes a dom.Page as the content frame. Reloads are delegated
// to the host that owns the page.
type DOMFrame struct {
	page       *dom.Page
	vendors    authoringin.Usecase
	reload     func() bool
	reloadPage func() error
}

func NewDOMFrame(page *dom.Page, vendors authoringin.Usecase, reload func() bool, reloadPage func() error) *DOMFrame {
	return &DOMFrame{page: page, vendors: vendors, reload: reload, reloadPage: reloadPage}
}

var _ trackingout.ContentFrame = (*DOMFrame)(nil)

func (f *DOMFrame) Reload() bool {
	if f.reload == nil {
		return false
	}
	return f.reload()
}

func (f *DOMFrame) ReloadPage() error {
	if f.reloadPage == nil {
		return errPageReloadUnsupported
	}
	return f.reloadPage()
}

func (f *DOMFrame) InnerFrames() []trackingout.InnerFrame {
	frames := f.page.Frames()
	out := make([]trackingout.InnerFrame, 0, len(frames))
	for _, frame := range frames {
		out = append(out, &domInnerFrame{frame: frame, vendors: f.vendors})
	}
	return out
}

func (f *DOMFrame) ObserveMutations(fn func()) func() {
	return f.page.Observe(fn)
}

type domInnerFrame struct {
	frame   dom.Frame
	vendors authoringin.Usecase
}

// NavigateTo only reaches same-origin frames.
func (f *domInnerFrame) NavigateTo(target int) bool {
	window, err := f.frame.Window()
	if err != nil || f.vendors == nil {
		return false
	}
	out, err := f.vendors.NavigateTo(context.Background(), authoringdto.NavigateInput{Root: window, Target: target})
	return err == nil && out.Navigated
}

func (f *domInnerFrame) PostMessage(msg any) error {
	return f.frame.PostMessage(msg)
}
