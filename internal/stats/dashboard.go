package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuifocus/internal/model"
)

const sparkChars = " .:-=+*#%@"

// DashboardRows caps the daily breakdown in the console dashboard.
const DashboardRows = 7

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Dashboard bundles everything the console and TUI reports show.
type Dashboard struct {
	Period model.Period
	Stats  model.PeriodStats
	Daily  []model.DailyRow
	Hourly [24]float64
}

// BuildDashboard filters the loaded records and derives every view.
func (a *Analyzer) BuildDashboard(period model.Period) Dashboard {
	records := a.FilterByPeriod(period)
	return Dashboard{
		Period: period,
		Stats:  a.ComputeStats(records),
		Daily:  a.DailyBreakdown(records),
		Hourly: a.HourlyPattern(records),
	}
}

// SummaryLines returns the headline numbers as label/value pairs.
func SummaryLines(s model.PeriodStats) [][2]string {
	return [][2]string{
		{"Total Sessions", strconv.Itoa(s.TotalSessions)},
		{"Work Sessions", strconv.Itoa(s.WorkSessions)},
		{"Break Sessions", strconv.Itoa(s.BreakSessions)},
		{"Productive Hours", FormatNumber(s.ProductiveHours)},
		{"Days Active", strconv.Itoa(s.DaysActive)},
		{"Current Streak", fmt.Sprintf("%d days", s.StreakDays)},
		{"Avg Work Session", FormatNumber(s.AvgWorkSession) + " min"},
		{"Avg Break Session", FormatNumber(s.AvgBreakSession) + " min"},
	}
}

// MetricLines returns the secondary metrics shown once sessions exist.
func MetricLines(s model.PeriodStats) [][2]string {
	return [][2]string{
		{"Work Ratio", FormatNumber(s.WorkRatio) + "% work"},
		{"Total Focus Time", FormatNumber(s.TotalWorkMinutes) + " minutes"},
		{"Total Break Time", FormatNumber(s.TotalBreakMinutes) + " minutes"},
		{"Avg Sessions/Day", FormatNumber(s.AvgSessionsPerDay)},
		{"Avg Work/Day", FormatNumber(s.AvgWorkMinutesPerDay) + " minutes"},
		{"Longest Work Session", FormatNumber(s.LongestWorkSession) + " min"},
		{"Shortest Work Session", FormatNumber(s.ShortestWorkSession) + " min"},
	}
}

// Insights turns the aggregate into short advice lines.
func Insights(s model.PeriodStats) []string {
	if s.TotalSessions == 0 {
		return []string{"No sessions recorded yet. Start your first focus session!"}
	}
	var out []string
	switch {
	case s.ProductiveHours < 2:
		out = append(out, "Building momentum! Try to reach 2+ hours of focus time daily.")
	case s.ProductiveHours < 4:
		out = append(out, "Good progress! You're developing a solid focus habit.")
	default:
		out = append(out, "Excellent focus! You're in the productivity zone!")
	}
	if s.AvgWorkSession > 0 {
		switch {
		case s.AvgWorkSession < 20:
			out = append(out, "Consider longer work sessions (25-45 min) for deeper focus.")
		case s.AvgWorkSession > 50:
			out = append(out, "Great endurance! Consider adding more breaks to stay fresh.")
		}
	}
	switch {
	case s.StreakDays >= 7:
		out = append(out, fmt.Sprintf("Amazing %d-day streak! Consistency is key!", s.StreakDays))
	case s.StreakDays >= 3:
		out = append(out, fmt.Sprintf("Great %d-day streak! Keep it going!", s.StreakDays))
	case s.StreakDays == 0:
		out = append(out, "Ready to start a new streak? Today is perfect!")
	}
	switch {
	case s.WorkRatio > 80:
		out = append(out, "High focus ratio! Remember to take breaks.")
	case s.WorkRatio < 60:
		out = append(out, "Consider more work sessions relative to breaks.")
	}
	return out
}

// DailyTable renders the daily breakdown, newest first, capped at limit rows
// when limit > 0.
func DailyTable(rows []model.DailyRow, limit int) []string {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	headers := []string{"Date", "Sessions", "Work", "Work Hours", "Break Min", ""}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		bars := int(r.WorkHours() * 2)
		if bars > 20 {
			bars = 20
		}
		tableRows = append(tableRows, []string{
			r.Date.Format("Mon, Jan 02"),
			strconv.Itoa(r.TotalSessions),
			strconv.Itoa(r.WorkSessions),
			FormatNumber(r.WorkHours()) + "h",
			FormatNumber(r.BreakMinutes),
			strings.Repeat("█", bars),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	return formatTable(headers, tableRows, rightAlign)
}

// HourlyLine renders the hour-of-day work pattern as a sparkline with the
// busiest hour.
func HourlyLine(hours [24]float64) string {
	peak := 0
	for h, v := range hours {
		if v > hours[peak] {
			peak = h
		}
	}
	if hours[peak] == 0 {
		return "00 " + Sparkline(hours[:]) + " 23 (no work sessions)"
	}
	return fmt.Sprintf("00 %s 23 (peak %02d:00, %s min)", Sparkline(hours[:]), peak, FormatNumber(hours[peak]))
}

// RenderDashboard prints the console report.
func RenderDashboard(w io.Writer, d Dashboard) error {
	lines := []string{fmt.Sprintf("Focus Dashboard (%s)", d.Period), ""}
	lines = append(lines, "Summary")
	lines = append(lines, labelled(SummaryLines(d.Stats))...)
	lines = append(lines, "")
	if d.Stats.TotalSessions > 0 {
		lines = append(lines, "Productivity")
		lines = append(lines, labelled(MetricLines(d.Stats))...)
		lines = append(lines, "")
	}
	if len(d.Daily) > 0 {
		lines = append(lines, "Daily Breakdown (Recent)")
		lines = append(lines, DailyTable(d.Daily, DashboardRows)...)
		lines = append(lines, "")
		lines = append(lines, "Hourly Pattern")
		lines = append(lines, HourlyLine(d.Hourly), "")
	}
	lines = append(lines, "Insights")
	for _, insight := range Insights(d.Stats) {
		lines = append(lines, "- "+insight)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderQuick prints the one-line status summary.
func RenderQuick(w io.Writer, q model.QuickStats) error {
	_, err := fmt.Fprintf(w, "Today: %d | Week: %d | Total: %d sessions, %d min | Streak: %d days\n",
		q.TodaySessions, q.WeekSessions, q.TotalSessions, q.TotalMinutes, q.Streak)
	return err
}

// FormatNumber prints v with at most one decimal and no trailing zero.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', -1, 64)
}

func labelled(pairs [][2]string) []string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0] + ":", p[1]})
	}
	return formatTable(nil, rows, nil)
}
