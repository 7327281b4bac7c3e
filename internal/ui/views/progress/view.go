package progress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scormtrack/internal/modules/tracking/dto"
	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/theme"
)

// Model shows the progress messages of a run one at a time, with bars for
// the furthest and current position, next to the final LMS state.
type Model struct {
	result   simulation.Result
	cursor   int
	furthest progress.Model
	current  progress.Model
	width    int
	height   int
}

func New() Model {
	return Model{
		furthest: progress.New(progress.WithSolidFill(string(theme.Green))),
		current:  progress.New(progress.WithSolidFill(string(theme.Sapphire))),
	}
}

// SetResult loads a finished run and moves to its last progress message.
func (m *Model) SetResult(res simulation.Result) {
	m.result = res
	m.cursor = len(res.Progress) - 1
}

// Prev and Next scrub through the progress messages.
func (m *Model) Prev() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Model) Next() {
	if m.cursor < len(m.result.Progress)-1 {
		m.cursor++
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barW := msg.Width/2 - 8
		if barW < 10 {
			barW = 10
		}
		m.furthest.Width = barW
		m.current.Width = barW
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			m.Prev()
		case "right", "l":
			m.Next()
		case "home":
			m.cursor = 0
		case "end":
			m.cursor = len(m.result.Progress) - 1
		}
	}
	return m, nil
}

func (m Model) View() string {
	halfW := m.width / 2
	left := theme.Pane.Width(halfW - 4).Render(m.renderMessage())
	right := theme.Pane.Width(m.width - halfW - 4).Render(m.renderFinal())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderMessage() string {
	var sb strings.Builder
	if len(m.result.Progress) == 0 || m.cursor < 0 {
		sb.WriteString(theme.Title.Render("Progress") + "\n\n")
		sb.WriteString(theme.Muted.Render("no progress reported"))
		return sb.String()
	}
	msg := m.result.Progress[m.cursor]
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Progress %d/%d", m.cursor+1, len(m.result.Progress))) + "\n\n")
	sb.WriteString("furthest  " + bar(m.furthest, msg.ProgressPercent) + "\n")
	sb.WriteString("current   " + bar(m.current, msg.CurrentPercent) + "\n\n")
	rows := [][2]string{
		{"slide", fmt.Sprintf("%d of %s", msg.CurrentSlide, total(msg))},
		{"furthest", fmt.Sprint(msg.FurthestSlide)},
		{"location", msg.LessonLocation},
		{"status", msg.LessonStatus},
		{"score", msg.Score},
		{"source", msg.SlideSource},
	}
	for _, r := range rows {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-9s ", r[0])) + r[1] + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("←/→ step  home/end jump"))
	return sb.String()
}

func bar(p progress.Model, percent *float64) string {
	if percent == nil {
		return theme.Muted.Render("total unknown")
	}
	return p.ViewAs(*percent / 100)
}

func total(msg dto.ProgressMessage) string {
	if msg.TotalSlides == 0 {
		return "?"
	}
	return fmt.Sprint(msg.TotalSlides)
}

func (m Model) renderFinal() string {
	res := m.result
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Final state") + "\n\n")
	sb.WriteString(fmt.Sprintf("loads %d · reloads %d\n", res.Loads, res.Reloads))
	sb.WriteString(fmt.Sprintf("slide %d · furthest %d · total %d\n\n",
		res.Final.CurrentPosition, res.Final.FurthestPosition, res.Final.TotalPositions))

	sb.WriteString(theme.Title.Render("LMS") + "\n")
	keys := make([]string, 0, len(res.LMS))
	for k := range res.LMS {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(theme.Muted.Render(k) + " " + truncate(res.LMS[k], 48) + "\n")
	}

	sb.WriteString("\n")
	if res.Passed() {
		sb.WriteString(theme.Pass.Render("all expectations met"))
	} else {
		for _, f := range res.Failures {
			sb.WriteString(theme.Fail.Render("✗ "+f) + "\n")
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
