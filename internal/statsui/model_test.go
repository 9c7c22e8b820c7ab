package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
	"github.com/verte-zerg/tuifocus/internal/stats"
)

var now = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func completed(at time.Time, t model.SessionType, minutes float64) model.EventRecord {
	return model.EventRecord{Timestamp: at, Event: model.EventCompleted, SessionType: string(t), DurationMinutes: minutes}
}

func newTestModel(t *testing.T) (*Model, *eventlog.Writer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "focus.log")
	w := eventlog.NewWriter(path)
	records := []model.EventRecord{
		completed(time.Date(2026, 10, 18, 9, 25, 0, 0, time.UTC), model.SessionWork, 25),
		completed(time.Date(2026, 10, 17, 14, 5, 0, 0, time.UTC), model.SessionShortBreak, 5),
		completed(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), model.SessionWork, 50),
	}
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	a := stats.NewAnalyzer(path, stats.AnalyzerOptions{Location: time.UTC, Now: func() time.Time { return now }})
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	m := NewModel(a, model.PeriodWeek)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, w
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestOverviewShowsSummaryCards(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{"Overview", "Period: week", "Total Sessions", "Productivity", "Insights"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if m.dash.Stats.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions this week, got %d", m.dash.Stats.TotalSessions)
	}
}

func TestDailyAndHoursTabs(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabDaily {
		t.Fatalf("expected daily tab, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "Sun, Oct 18") || !strings.Contains(view, "Sat, Oct 17") {
		t.Fatalf("expected daily rows in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	view = m.View()
	if !strings.Contains(view, "peak 09:00, 25 min") {
		t.Fatalf("expected hourly peak in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap to overview, got %d", m.activeTab)
	}
}

func TestPeriodCycling(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key(']'))
	if m.period != model.PeriodMonth {
		t.Fatalf("expected month, got %s", m.period)
	}
	m.Update(key(']'))
	if m.period != model.PeriodYear || m.dash.Stats.WorkSessions != 2 {
		t.Fatalf("expected year with 2 work sessions, got %s %+v", m.period, m.dash.Stats)
	}
	m.Update(key('['))
	m.Update(key('['))
	m.Update(key('['))
	if m.period != model.PeriodDay || m.dash.Stats.TotalSessions != 1 {
		t.Fatalf("expected day with 1 session, got %s %+v", m.period, m.dash.Stats)
	}
	m.Update(key('['))
	if m.period != model.PeriodAll {
		t.Fatalf("expected period to wrap to all, got %s", m.period)
	}
}

func TestReloadPicksUpNewRecords(t *testing.T) {
	m, w := newTestModel(t)
	if err := w.Append(completed(time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC), model.SessionWork, 25)); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Update(key('r'))
	if m.dash.Stats.WorkSessions != 2 {
		t.Fatalf("expected reload to see the new session, got %+v", m.dash.Stats)
	}
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestEmptyLog(t *testing.T) {
	a := stats.NewAnalyzer(filepath.Join(t.TempDir(), "none.log"), stats.AnalyzerOptions{Now: func() time.Time { return now }})
	m := NewModel(a, "")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.period != model.PeriodWeek {
		t.Fatalf("expected default period week, got %s", m.period)
	}
	if !strings.Contains(m.View(), "Start your first focus session") {
		t.Fatalf("expected empty insight:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "No completed sessions in this period.") {
		t.Fatalf("expected empty daily message:\n%s", m.View())
	}
}
