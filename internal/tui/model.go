// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
	"github.com/verte-zerg/tuifocus/internal/notify"
	"github.com/verte-zerg/tuifocus/internal/session"
)

// Engine is the part of the session engine the UI drives.
type Engine interface {
	Start(t model.SessionType, minutes float64) error
	Pause() error
	Resume() error
	Stop() error
	Snapshot() session.Info
}

type tickMsg struct {
	elapsed int
	total   int
}

type stateMsg struct {
	from model.SessionState
	to   model.SessionState
}

type completeMsg struct {
	sessionType model.SessionType
	minutes     float64
}

type suggestMsg struct {
	decision session.Decision
}

type noticeMsg struct {
	note notify.Notification
}

type actionMsg struct {
	err error
}

type keyMap struct {
	Toggle     key.Binding
	Stop       key.Binding
	Work       key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Custom     key.Binding
	StartAny   key.Binding
	Next       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Work:       key.NewBinding(key.WithKeys("w")),
		ShortBreak: key.NewBinding(key.WithKeys("b")),
		LongBreak:  key.NewBinding(key.WithKeys("l")),
		Custom:     key.NewBinding(key.WithKeys("c")),
		StartAny:   key.NewBinding(key.WithKeys("w", "b", "l", "c"), key.WithHelp("w/b/l/c", "start")),
		Next:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.StartAny, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Bridge forwards engine events and notifications into a running program.
// Events that arrive before Attach are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes future events to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *Bridge) OnTick(elapsed, total int) {
	b.send(tickMsg{elapsed: elapsed, total: total})
}

func (b *Bridge) OnComplete(t model.SessionType, minutes float64) {
	b.send(completeMsg{sessionType: t, minutes: minutes})
}

func (b *Bridge) OnStateChange(from, to model.SessionState) {
	b.send(stateMsg{from: from, to: to})
}

func (b *Bridge) OnSuggest(d session.Decision) {
	b.send(suggestMsg{decision: d})
}

// Show implements notify.Sink by displaying the notification as a banner.
func (b *Bridge) Show(n notify.Notification) error {
	b.send(noticeMsg{note: n})
	return nil
}

// Model implements the Bubble Tea timer UI.
type Model struct {
	engine   Engine
	settings model.Settings
	initial  model.SessionType
	minutes  float64

	width  int
	height int

	info    session.Info
	keys    keyMap
	help    help.Model
	bar     progress.Model
	notice  *notify.Notification
	lastErr error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	timeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	stateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB77E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the timer UI. The initial session starts from Init;
// an empty initial type leaves the engine idle.
func NewModel(engine Engine, settings model.Settings, initial model.SessionType, minutes float64) *Model {
	m := &Model{
		engine:   engine,
		settings: settings,
		initial:  initial,
		minutes:  minutes,
		keys:     newKeyMap(),
		help:     help.New(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.info = engine.Snapshot()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.initial == "" {
		return nil
	}
	return m.action(func() error {
		return m.engine.Start(m.initial, m.minutes)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = barWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil
	case tickMsg, stateMsg, completeMsg, suggestMsg:
		m.info = m.engine.Snapshot()
		return m, nil
	case noticeMsg:
		note := msg.note
		m.notice = &note
		return m, nil
	case actionMsg:
		m.lastErr = msg.err
		m.info = m.engine.Snapshot()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.info.Session.State == model.StatePaused {
			return m.action(m.engine.Resume)
		}
		return m.action(m.engine.Pause)
	case key.Matches(msg, m.keys.Stop):
		return m.action(m.engine.Stop)
	case key.Matches(msg, m.keys.Work):
		return m.startCmd(model.SessionWork)
	case key.Matches(msg, m.keys.ShortBreak):
		return m.startCmd(model.SessionShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		return m.startCmd(model.SessionLongBreak)
	case key.Matches(msg, m.keys.Custom):
		return m.startCmd(model.SessionCustom)
	case key.Matches(msg, m.keys.Next):
		if d := m.info.Suggestion; d != nil {
			return m.action(func() error {
				return m.engine.Start(d.Next, d.Minutes)
			})
		}
	}
	return nil
}

func (m *Model) startCmd(t model.SessionType) tea.Cmd {
	return m.action(func() error {
		return m.engine.Start(t, 0)
	})
}

// action runs fn off the event loop; engine callbacks send messages back to
// the program and would deadlock if issued from Update.
func (m *Model) action(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{err: fn()}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	body := m.renderBody()
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return body + "\n\n" + footer
	}
	top := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	bottom := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return top + "\n" + bottom
}

func (m *Model) renderBody() string {
	s := m.info.Session
	lines := []string{}
	if s.Type == "" {
		lines = append(lines, titleStyle.Render("Ready"), stateStyle.Render("press w to start a work session"))
	} else {
		lines = append(lines,
			titleStyle.Render(strings.ToUpper(s.Type.Label())),
			timeStyle.Render(session.FormatRemaining(m.info.Remaining)),
			m.bar.ViewAs(m.info.Progress/100),
			stateStyle.Render(fmt.Sprintf("%s · %.0f%%", s.State, m.info.Progress)),
		)
	}
	if d := m.info.Suggestion; d != nil && s.State == model.StateCompleted {
		line := fmt.Sprintf("Next: %s (%s min)", d.Next.Label(), eventlog.FormatMinutes(d.Minutes))
		if d.AutoStart {
			line += fmt.Sprintf(", starting in %s", d.Delay)
		} else {
			line += ", press enter to start"
		}
		lines = append(lines, "", noticeStyle.Render(line))
	}
	if m.notice != nil {
		style := noticeStyle
		if m.notice.Kind == notify.KindWarning {
			style = warningStyle
		}
		lines = append(lines, "", style.Render(m.notice.Title+": "+m.notice.Message))
	}
	if m.lastErr != nil {
		lines = append(lines, "", errorStyle.Render(m.lastErr.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	counts := fmt.Sprintf("Completed %d work · %d total · long break every %d", m.info.CompletedWork, m.info.SessionCount, m.settings.LongBreakInterval)
	return footerStyle.Render(counts) + "  " + m.help.View(m.keys)
}

func barWidth(total int) int {
	w := int(float64(total) * 0.5)
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}
