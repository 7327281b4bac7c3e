package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/components"
	"scormtrack/internal/ui/theme"
	progressview "scormtrack/internal/ui/views/progress"
	timelineview "scormtrack/internal/ui/views/timeline"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// ScenarioPort replays one scenario from scratch.
type ScenarioPort interface {
	Run(ctx context.Context) (simulation.Result, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimeline tabID = iota
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{"Timeline", "Progress"}

// ─── async messages ───────────────────────────────────────────────────────────

type runFinishedMsg struct {
	result simulation.Result
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Rerun   key.Binding
	Step    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Rerun:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replay scenario")),
		Step:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "step progress")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Rerun, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Step},
		{k.Rerun, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model of the watch command. It replays a
// scenario through the port and routes the result to the two tabs.
type Model struct {
	name     string
	scenario ScenarioPort

	timeline timelineview.Model
	progress progressview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	result    simulation.Result
	running   bool
	status    string
	width     int
	height    int
}

func NewModel(name string, scenario ScenarioPort) Model {
	return Model{
		name:      name,
		scenario:  scenario,
		timeline:  timelineview.New(),
		progress:  progressview.New(),
		activeTab: tabTimeline,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		running:   true,
		status:    "replaying " + name,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.timeline.Init(), m.runCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case runFinishedMsg:
		m.running = false
		if msg.err != nil {
			m.status = "replay failed: " + msg.err.Error()
			return m, m.timeline.SetEvents(nil)
		}
		m.result = msg.result
		m.progress.SetResult(msg.result)
		m.status = m.verdict()
		return m, m.timeline.SetEvents(msg.result.Events)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = m.verdict()

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabTimeline && m.timeline.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			return m, m.rerun()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimeline:
		m.timeline, tabCmd = m.timeline.Update(msg)
	case tabProgress:
		m.progress, tabCmd = m.progress.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabProgress:
		content = m.progress.View()
	default:
		content = m.timeline.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "scormtrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := theme.Title.Render(m.name) + "  " + m.status
	right := theme.Muted.Render("?:help  tab:switch  r:replay  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) verdict() string {
	if m.running {
		return "replaying…"
	}
	if m.result.Passed() {
		return theme.Pass.Render("● pass")
	}
	return theme.Fail.Render(fmt.Sprintf("● %d expectation(s) failed", len(m.result.Failures)))
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "scenario:rerun":
		return m, m.rerun()

	case "events:kind":
		if len(parts) < 2 {
			m.status = "usage: events:kind <kind>"
			return m, nil
		}
		m.activeTab = tabTimeline
		m.status = "showing " + parts[1] + " events"
		return m, m.timeline.ShowKind(parts[1])

	case "events:all":
		m.activeTab = tabTimeline
		m.status = m.verdict()
		return m, m.timeline.ShowKind("")

	case "view:timeline":
		m.activeTab = tabTimeline

	case "view:progress":
		m.activeTab = tabProgress

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timeline, _ = m.timeline.Update(sz)
	m.progress, _ = m.progress.Update(sz)
}

func (m *Model) rerun() tea.Cmd {
	if m.running {
		return nil
	}
	m.running = true
	m.status = "replaying " + m.name
	return tea.Batch(m.timeline.SetLoading(), m.runCmd())
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) runCmd() tea.Cmd {
	scenario := m.scenario
	return func() tea.Msg {
		if scenario == nil {
			return runFinishedMsg{err: fmt.Errorf("no scenario configured")}
		}
		res, err := scenario.Run(context.Background())
		return runFinishedMsg{result: res, err: err}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
