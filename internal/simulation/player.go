package simulation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	codecdomain "scormtrack/internal/modules/suspenddata/domain"
	codecdto "scormtrack/internal/modules/suspenddata/dto"
	codecin "scormtrack/internal/modules/suspenddata/port/in"
	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/dom"
)

// Player imitates an authored course: it resumes from the SCORM API, keeps
// vendor globals on its page and writes its own suspend data format.
type Player struct {
	content  Content
	page     *dom.Page
	codec    codecin.Usecase
	shape    domain.APIShape
	emit     func(kind, detail string)
	api      trackingout.SCORMAPI
	current  int
	visited  map[int]bool
	writes   int
	detached bool
}

func newPlayer(content Content, page *dom.Page, codec codecin.Usecase, shape domain.APIShape, emit func(kind, detail string)) *Player {
	p := &Player{
		content: content,
		page:    page,
		codec:   codec,
		shape:   shape,
		emit:    emit,
		visited: map[int]bool{},
	}
	p.install()
	return p
}

// install publishes the navigation hooks the vendor tools expose.
func (p *Player) install() {
	switch p.content.Vendor {
	case "storyline":
		p.page.Define("GetPlayer", func(...any) (any, error) { return "player", nil })
		p.page.Define("DS.windowManager.jumpToSlide", func(args ...any) (any, error) {
			return nil, p.jump(args, 1)
		})
	case "captivate":
		p.page.Define("cpAPIInterface.getVariableValue", func(args ...any) (any, error) {
			name, _ := first(args).(string)
			switch name {
			case "cpInfoCurrentSlide":
				return p.current, nil
			case "cpInfoSlideCount":
				return p.content.Slides, nil
			}
			return nil, nil
		})
		p.page.Define("cpAPIInterface.setVariableValue", func(args ...any) (any, error) {
			if name, _ := first(args).(string); name == "cpCmndGotoSlide" && len(args) > 1 {
				return nil, p.jump(args[1:], 1)
			}
			return nil, nil
		})
	case "generic":
		p.page.Define("goToSlide", func(args ...any) (any, error) {
			return nil, p.jump(args, 0)
		})
	}
	p.page.OnMessage(func(msg any) {
		nav, ok := msg.(dto.NavigateMessage)
		if !ok || !p.content.HonorMessages {
			return
		}
		p.emit("player", fmt.Sprintf("received navigate message for slide %d", nav.Slide))
		p.GoTo(nav.Slide)
	})
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func (p *Player) jump(args []any, offset int) error {
	if p.api == nil || p.detached {
		return fmt.Errorf("player not running")
	}
	n, ok := first(args).(int)
	if !ok {
		return fmt.Errorf("slide argument must be an int")
	}
	p.GoTo(n + offset)
	return nil
}

// Boot runs the course start-up sequence against api.
func (p *Player) Boot(api trackingout.SCORMAPI) {
	if p.detached {
		return
	}
	p.api = api
	api.Initialize("")
	suspend := api.GetValue(p.shape.SuspendDataField)
	location := api.GetValue(p.shape.LocationField)
	pos := p.resumePosition(suspend, location)
	if p.content.Vendor == "captivate" {
		p.restoreVisited(suspend)
	}
	p.emit("player", fmt.Sprintf("resumed at slide %d", pos))
	p.show(pos)
}

func (p *Player) resumePosition(suspend, location string) int {
	pos := 0
	out, err := p.codec.Decode(context.Background(), codecdto.DecodeInput{Blob: suspend})
	if err == nil && out.Found {
		pos = out.Current
	}
	if pos < 1 {
		pos, _ = domain.ParseSlideNumber(location)
	}
	return p.clamp(pos)
}

func (p *Player) restoreVisited(suspend string) {
	for _, field := range strings.Split(suspend, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok || key != "vs" || value == "" {
			continue
		}
		for _, idx := range strings.Split(value, ":") {
			if n, err := strconv.Atoi(idx); err == nil {
				p.visited[n] = true
			}
		}
	}
}

func (p *Player) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > p.content.Slides {
		return p.content.Slides
	}
	return n
}

// GoTo is the learner moving within the course.
func (p *Player) GoTo(n int) {
	if p.api == nil || p.detached {
		return
	}
	p.show(p.clamp(n))
}

func (p *Player) Current() int { return p.current }

// Detach stops the player, as unloading the page would.
func (p *Player) Detach() {
	p.detached = true
}

func (p *Player) show(n int) {
	p.current = n
	p.visited[n-1] = true
	p.publishState()

	api := p.api
	api.SetValue(p.shape.SuspendDataField, p.suspendData())
	api.SetValue(p.shape.LocationField, p.location())
	if p.content.ReportsScore {
		api.SetValue(p.shape.ScoreField, strconv.Itoa(n*100/p.content.Slides))
	}
	status := "incomplete"
	if n == p.content.Slides {
		status = "completed"
	}
	api.SetValue(p.shape.StatusField, status)
	api.Commit("")
	p.writes++
	p.emit("player", fmt.Sprintf("showing slide %d of %d", n, p.content.Slides))
}

func (p *Player) publishState() {
	switch p.content.Vendor {
	case "storyline":
		_ = p.page.Assign("DS.presentation.currentSlideIndex", p.current-1)
		_ = p.page.Assign("DS.presentation.slideCount", p.content.Slides)
	case "generic":
		_ = p.page.Assign("currentSlide", p.current)
		_ = p.page.Assign("totalSlides", p.content.Slides)
	}
}

func (p *Player) suspendData() string {
	idx := p.current - 1
	switch p.content.Vendor {
	case "storyline":
		inner := fmt.Sprintf(`{"v":"3","d":[{"n":"Resume","v":"0_%d"}],"resume":"0_%d","l":%d}`, idx, idx, idx)
		return codecdomain.CompressToBase64(inner)
	case "captivate":
		return fmt.Sprintf("cs=%d,vs=%s,qt=0,qr=,ts=%d", idx, p.visitedList(), 30000+p.writes)
	case "generic":
		return fmt.Sprintf(`{"currentSlide":%d,"total":%d}`, p.current, p.content.Slides)
	default:
		return fmt.Sprintf("slide=%d&seen=%d", p.current, len(p.visited))
	}
}

func (p *Player) visitedList() string {
	parts := make([]string, 0, len(p.visited))
	for i := 0; i < p.content.Slides; i++ {
		if p.visited[i] {
			parts = append(parts, strconv.Itoa(i))
		}
	}
	return strings.Join(parts, ":")
}

func (p *Player) location() string {
	switch p.content.Vendor {
	case "storyline":
		return "0_" + strconv.Itoa(p.current-1)
	case "generic":
		return "slide_" + strconv.Itoa(p.current)
	default:
		return strconv.Itoa(p.current)
	}
}
