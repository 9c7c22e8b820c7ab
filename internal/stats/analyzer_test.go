package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
)

var now = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func completedAt(t time.Time, sessionType model.SessionType, minutes float64) model.EventRecord {
	return model.EventRecord{
		Timestamp:       t,
		Event:           model.EventCompleted,
		SessionType:     string(sessionType),
		DurationMinutes: minutes,
	}
}

func daysAgo(n int, hour int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-n, hour, 0, 0, 0, time.UTC)
}

func TestStreakDays(t *testing.T) {
	cases := []struct {
		name string
		days []int
		want int
	}{
		{name: "empty", days: nil, want: 0},
		{name: "today yesterday day before", days: []int{0, 1, 2}, want: 3},
		{name: "gap breaks streak", days: []int{0, 3}, want: 1},
		{name: "starts yesterday", days: []int{1, 2}, want: 2},
		{name: "stale", days: []int{2, 3, 4}, want: 0},
		{name: "duplicates count once", days: []int{0, 0, 1, 1}, want: 2},
	}
	for _, tc := range cases {
		var records []model.EventRecord
		for _, d := range tc.days {
			records = append(records, completedAt(daysAgo(d, 10), model.SessionWork, 25))
		}
		if got := StreakDays(records, now); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestStreakIgnoresNonCompleted(t *testing.T) {
	records := []model.EventRecord{
		{Timestamp: daysAgo(0, 9), Event: model.EventStarted, SessionType: "work", DurationMinutes: 25},
		completedAt(daysAgo(1, 9), model.SessionWork, 25),
	}
	if got := StreakDays(records, now); got != 1 {
		t.Fatalf("expected streak of 1, got %d", got)
	}
}

func TestFilterByPeriod(t *testing.T) {
	records := []model.EventRecord{
		completedAt(daysAgo(400, 9), model.SessionWork, 25),
		completedAt(daysAgo(200, 9), model.SessionWork, 25),
		completedAt(daysAgo(20, 9), model.SessionWork, 25),
		completedAt(daysAgo(3, 9), model.SessionWork, 25),
		completedAt(daysAgo(1, 23), model.SessionWork, 25),
		completedAt(daysAgo(0, 0), model.SessionWork, 25),
		completedAt(daysAgo(0, 14), model.SessionWork, 25),
	}
	cases := map[model.Period]int{
		model.PeriodDay:   2,
		model.PeriodWeek:  4,
		model.PeriodMonth: 5,
		model.PeriodYear:  6,
		model.PeriodAll:   7,
	}
	for period, want := range cases {
		if got := len(FilterByPeriod(records, period, now)); got != want {
			t.Fatalf("%s: expected %d records, got %d", period, want, got)
		}
	}
}

func TestComputeStats(t *testing.T) {
	records := []model.EventRecord{
		{Timestamp: daysAgo(1, 9), Event: model.EventStarted, SessionType: "work", DurationMinutes: 25},
		completedAt(daysAgo(1, 9), model.SessionWork, 25),
		completedAt(daysAgo(1, 10), model.SessionShortBreak, 5),
		completedAt(daysAgo(0, 9), model.SessionWork, 50),
		completedAt(daysAgo(0, 10), model.SessionLongBreak, 15),
		completedAt(daysAgo(0, 11), model.SessionCustom, 10),
		{Timestamp: daysAgo(0, 12), Event: model.EventStopped, SessionType: "work", DurationMinutes: 3.5},
	}
	s := ComputeStats(records, time.UTC)
	if s.TotalSessions != 5 || s.WorkSessions != 2 || s.BreakSessions != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TotalWorkMinutes != 75 || s.TotalBreakMinutes != 30 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.AvgWorkSession != 37.5 || s.AvgBreakSession != 10 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if s.WorkRatio != 40 || s.DaysActive != 2 || s.AvgSessionsPerDay != 2.5 || s.AvgWorkMinutesPerDay != 37.5 {
		t.Fatalf("unexpected derived values: %+v", s)
	}
	if s.LongestWorkSession != 50 || s.ShortestWorkSession != 25 || s.ProductiveHours != 1.3 {
		t.Fatalf("unexpected work extremes: %+v", s)
	}
	if s.StreakDays != 0 {
		t.Fatalf("package-level stats must not compute streak")
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, time.UTC)
	if s != (model.PeriodStats{}) {
		t.Fatalf("expected zero stats, got %+v", s)
	}
}

func TestDailyBreakdown(t *testing.T) {
	records := []model.EventRecord{
		completedAt(daysAgo(2, 9), model.SessionWork, 25),
		completedAt(daysAgo(0, 9), model.SessionWork, 25),
		completedAt(daysAgo(0, 10), model.SessionShortBreak, 5),
		completedAt(daysAgo(0, 11), model.SessionWork, 25),
	}
	rows := DailyBreakdown(records, time.UTC)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	today := rows[0]
	if !today.Date.Equal(daysAgo(0, 0)) || today.TotalSessions != 3 || today.WorkSessions != 2 {
		t.Fatalf("unexpected first row: %+v", today)
	}
	if today.WorkMinutes != 50 || today.BreakMinutes != 5 || today.WorkHours() != 0.8 {
		t.Fatalf("unexpected minutes: %+v", today)
	}
	if !rows[1].Date.Equal(daysAgo(2, 0)) {
		t.Fatalf("rows not sorted newest first: %+v", rows)
	}
}

func TestHourlyPattern(t *testing.T) {
	records := []model.EventRecord{
		completedAt(daysAgo(0, 9), model.SessionWork, 25),
		completedAt(daysAgo(1, 9), model.SessionWork, 25),
		completedAt(daysAgo(0, 9), model.SessionShortBreak, 5),
		completedAt(daysAgo(0, 14), model.SessionWork, 30),
	}
	hours := HourlyPattern(records, time.UTC)
	if hours[9] != 50 || hours[14] != 30 || hours[10] != 0 {
		t.Fatalf("unexpected hourly pattern: %v", hours)
	}
}

func writeLog(t *testing.T, records []model.EventRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "focus.log")
	w := eventlog.NewWriter(path)
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return path
}

func TestAnalyzerRoundTrip(t *testing.T) {
	const sessions = 6
	const minutes = 25.0
	var records []model.EventRecord
	for i := 0; i < sessions; i++ {
		at := daysAgo(i%3, 8+i)
		records = append(records,
			model.EventRecord{Timestamp: at, Event: model.EventStarted, SessionType: "work", DurationMinutes: minutes},
			completedAt(at.Add(25*time.Minute), model.SessionWork, minutes),
		)
	}
	path := writeLog(t, records)

	a := NewAnalyzer(path, AnalyzerOptions{Location: time.UTC, Now: func() time.Time { return now }})
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(a.Records()) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(a.Records()))
	}
	s := a.ComputeStats(a.FilterByPeriod(model.PeriodAll))
	if s.WorkSessions != sessions || s.TotalWorkMinutes != sessions*minutes {
		t.Fatalf("expected %d sessions totalling %.0f minutes, got %+v", sessions, sessions*minutes, s)
	}
	if s.StreakDays != 3 {
		t.Fatalf("expected 3 day streak, got %d", s.StreakDays)
	}

	q := a.QuickStats()
	want := model.QuickStats{TodaySessions: 2, WeekSessions: 6, TotalSessions: 6, TotalMinutes: 150, Streak: 3}
	if q != want {
		t.Fatalf("expected %+v, got %+v", want, q)
	}
}

func TestAnalyzerMissingLog(t *testing.T) {
	a := NewAnalyzer(filepath.Join(t.TempDir(), "none.log"), AnalyzerOptions{Now: func() time.Time { return now }})
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("expected missing log to load empty, got %v", err)
	}
	if q := a.QuickStats(); q != (model.QuickStats{}) {
		t.Fatalf("expected empty quick stats, got %+v", q)
	}
}

func TestRenderDashboard(t *testing.T) {
	records := []model.EventRecord{
		completedAt(daysAgo(0, 9), model.SessionWork, 25),
		completedAt(daysAgo(0, 10), model.SessionShortBreak, 5),
	}
	a := NewAnalyzer(writeLog(t, records), AnalyzerOptions{Location: time.UTC, Now: func() time.Time { return now }})
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, a.BuildDashboard(model.PeriodWeek)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Focus Dashboard (week)",
		"Total Sessions:",
		"Work Ratio:",
		"Sun, Oct 18",
		"peak 09:00, 25 min",
		"Building momentum!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderDashboard(&buf, Dashboard{Period: model.PeriodDay}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions recorded yet.") || strings.Contains(buf.String(), "Productivity") {
		t.Fatalf("unexpected empty dashboard:\n%s", buf.String())
	}
}

func TestExport(t *testing.T) {
	records := []model.EventRecord{
		completedAt(daysAgo(0, 9), model.SessionWork, 25),
		completedAt(daysAgo(0, 10), model.SessionShortBreak, 5),
	}
	d := Dashboard{
		Period: model.PeriodAll,
		Stats:  ComputeStats(records, time.UTC),
		Daily:  DailyBreakdown(records, time.UTC),
		Hourly: HourlyPattern(records, time.UTC),
	}
	dir := filepath.Join(t.TempDir(), "exports")
	stamp := now.Format(ExportStamp)

	files, err := ExportCSV(dir, records, d, stamp)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "focus_sessions_20261018_153000.csv" {
		t.Fatalf("unexpected files: %v", files)
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "2026-10-18 09:00:00" || rows[1][1] != "Completed" || rows[2][2] != "short_break" {
		t.Fatalf("unexpected csv rows: %v", rows)
	}

	path, err := ExportJSON(dir, d, stamp)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["total_sessions"] != float64(2) || decoded["work_ratio"] != float64(50) {
		t.Fatalf("unexpected summary: %v", decoded)
	}
}
