package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/theme"
)

// ─── list item ───────────────────────────────────────────────────────────────

type eventItem struct {
	event simulation.Event
}

func (i eventItem) Title() string {
	return fmt.Sprintf("%8s  %s", formatAt(i.event), summary(i.event))
}

func (i eventItem) Description() string {
	return fmt.Sprintf("load %d · %s", i.event.Load, i.event.Kind)
}

func (i eventItem) FilterValue() string { return i.event.Kind + " " + i.event.Detail }

func formatAt(ev simulation.Event) string {
	return fmt.Sprintf("+%.2fs", ev.At.Seconds())
}

// summary shortens host messages to their type so the list stays readable.
func summary(ev simulation.Event) string {
	if ev.Kind != "host" {
		return ev.Detail
	}
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(ev.Detail), &env); err != nil || env.Type == "" {
		return ev.Detail
	}
	return "→ " + env.Type
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	list    list.Model
	events  []simulation.Event
	kind    string
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Timeline"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{list: l, detail: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetLoading shows the spinner while a scenario replays.
func (m *Model) SetLoading() tea.Cmd {
	m.loading = true
	return m.spinner.Tick
}

// SetEvents replaces the timeline with the events of a finished run.
func (m *Model) SetEvents(events []simulation.Event) tea.Cmd {
	m.loading = false
	m.events = events
	return m.refresh()
}

// ShowKind narrows the timeline to one event kind. An empty kind shows all.
func (m *Model) ShowKind(kind string) tea.Cmd {
	m.kind = kind
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	items := make([]list.Item, 0, len(m.events))
	for _, ev := range m.events {
		if m.kind != "" && ev.Kind != m.kind {
			continue
		}
		items = append(items, eventItem{event: ev})
	}
	m.list.Title = "Timeline"
	if m.kind != "" {
		m.list.Title = "Timeline · " + m.kind
	}
	cmd := m.list.SetItems(items)
	m.list.Select(0)
	m.detail.SetContent(m.renderDetail())
	return cmd
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
			m.detail.GotoTop()
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Replaying scenario…")
	}

	listW := m.width * 55 / 100
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 55 / 100
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(eventItem)
	if !ok {
		return theme.Muted.Render("no events")
	}
	ev := item.event
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(ev.Kind) + "\n\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("at %s · page load %d", formatAt(ev), ev.Load)) + "\n\n")
	sb.WriteString(prettyDetail(ev.Detail))
	return sb.String()
}

func prettyDetail(detail string) string {
	if !strings.HasPrefix(detail, "{") {
		return detail
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(detail), "", "  "); err != nil {
		return detail
	}
	return out.String()
}
