// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuifocus/internal/model"
	"github.com/verte-zerg/tuifocus/internal/stats"
)

const (
	tabOverview = iota
	tabDaily
	tabHours
)

const hourBarWidth = 30

var periods = []model.Period{model.PeriodDay, model.PeriodWeek, model.PeriodMonth, model.PeriodYear, model.PeriodAll}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB77E"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	analyzer *stats.Analyzer
	period   model.Period

	dash   stats.Dashboard
	errMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	dailyTable table.Model

	width  int
	height int
}

// NewModel builds the stats browser over records already loaded into analyzer.
func NewModel(analyzer *stats.Analyzer, period model.Period) *Model {
	if period == "" {
		period = model.PeriodWeek
	}
	m := &Model{
		analyzer: analyzer,
		period:   period,
		tabs:     []string{"Overview", "Daily", "Hours"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.dailyTable = table.New(
		table.WithColumns(dailyColumns()),
		table.WithHeight(1),
	)
	m.dailyTable.SetStyles(dailyTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "p", "]":
			m.shiftPeriod(1)
			return m, nil
		case "P", "[":
			m.shiftPeriod(-1)
			return m, nil
		case "r":
			m.reload()
			return m, nil
		case "g", "home":
			if m.activeTab == tabDaily {
				m.dailyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabDaily {
				m.dailyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabDaily {
				var cmd tea.Cmd
				m.dailyTable, cmd = m.dailyTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.dailyTable.SetWidth(m.width)
	// One line goes to the header row and its border.
	m.dailyTable.SetHeight(maxInt(1, bodyHeight-2))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabDaily {
		m.dailyTable.Focus()
	} else {
		m.dailyTable.Blur()
	}
}

func (m *Model) shiftPeriod(delta int) {
	idx := 0
	for i, p := range periods {
		if p == m.period {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(periods)) % len(periods)
	m.period = periods[idx]
	m.refresh()
}

func (m *Model) reload() {
	if err := m.analyzer.Load(context.Background()); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.refresh()
}

func (m *Model) refresh() {
	m.dash = m.analyzer.BuildDashboard(m.period)
	m.dailyTable.SetRows(dailyRows(m.dash.Daily))
	m.dailyTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.dash, width))
	m.viewports[tabHours].SetContent(renderHours(m.dash.Hourly))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Period: %s  Log: %s  Records: %d", m.period, m.analyzer.Path(), len(m.analyzer.Records()))
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Period: [/]  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabDaily {
		if len(m.dash.Daily) == 0 {
			return "No completed sessions in this period."
		}
		return tableMutedStyle.Render(m.dailyTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func renderOverview(d stats.Dashboard, width int) string {
	var sections []string
	sections = append(sections, renderCards(stats.SummaryLines(d.Stats), width))
	if d.Stats.TotalSessions > 0 {
		lines := []string{sectionStyle.Render("Productivity")}
		for _, pair := range stats.MetricLines(d.Stats) {
			lines = append(lines, fmt.Sprintf("%-22s %s", pair[0], pair[1]))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	insights := []string{sectionStyle.Render("Insights")}
	for _, line := range stats.Insights(d.Stats) {
		insights = append(insights, "- "+line)
	}
	sections = append(sections, strings.Join(insights, "\n"))
	return strings.Join(sections, "\n\n")
}

// renderCards lays the summary cards out in as many rows as the width needs.
func renderCards(pairs [][2]string, width int) string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, pair := range pairs {
		card := metricCard(pair[0], pair[1])
		cardWidth := lipgloss.Width(card)
		if len(row) > 0 && rowWidth+cardWidth > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
			rowWidth = 0
		}
		row = append(row, card)
		rowWidth += cardWidth
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHours(hours [24]float64) string {
	peak := 0.0
	for _, v := range hours {
		if v > peak {
			peak = v
		}
	}
	lines := []string{sectionStyle.Render("Work minutes by hour of day"), stats.HourlyLine(hours), ""}
	for h, v := range hours {
		n := 0
		if peak > 0 {
			n = int(v/peak*hourBarWidth + 0.5)
		}
		bar := barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", hourBarWidth-n)
		lines = append(lines, fmt.Sprintf("%02d:00 %s %s", h, bar, stats.FormatNumber(v)))
	}
	return strings.Join(lines, "\n")
}

func dailyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Sessions", Width: 8},
		{Title: "Work", Width: 5},
		{Title: "Work Hours", Width: 10},
		{Title: "Break Min", Width: 9},
	}
}

func dailyRows(daily []model.DailyRow) []table.Row {
	rows := make([]table.Row, 0, len(daily))
	for _, r := range daily {
		rows = append(rows, table.Row{
			r.Date.Format("Mon, Jan 02"),
			strconv.Itoa(r.TotalSessions),
			strconv.Itoa(r.WorkSessions),
			stats.FormatNumber(r.WorkHours()) + "h",
			stats.FormatNumber(r.BreakMinutes),
		})
	}
	return rows
}

func dailyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
