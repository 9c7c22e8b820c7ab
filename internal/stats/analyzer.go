// Package stats reconstructs productivity statistics from the event log.
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
)

// Analyzer answers statistics queries over one event log file.
type Analyzer struct {
	path    string
	loc     *time.Location
	now     func() time.Time
	records []model.EventRecord
}

// AnalyzerOptions overrides the wall clock and time zone used for periods
// and streaks.
type AnalyzerOptions struct {
	Location *time.Location
	Now      func() time.Time
}

// NewAnalyzer returns an analyzer for the log at path. Call Load before
// querying.
func NewAnalyzer(path string, options AnalyzerOptions) *Analyzer {
	a := &Analyzer{path: path, loc: options.Location, now: options.Now}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Path returns the log file location.
func (a *Analyzer) Path() string {
	return a.path
}

// Load (re)reads every parseable line of the log.
func (a *Analyzer) Load(ctx context.Context) error {
	records, err := eventlog.ReadFile(ctx, a.path, a.loc)
	if err != nil {
		return err
	}
	a.records = records
	return nil
}

// Records returns the loaded records in file order.
func (a *Analyzer) Records() []model.EventRecord {
	return a.records
}

// FilterByPeriod returns the loaded records inside period.
func (a *Analyzer) FilterByPeriod(period model.Period) []model.EventRecord {
	return FilterByPeriod(a.records, period, a.now().In(a.loc))
}

// ComputeStats aggregates the completed records and the current streak.
func (a *Analyzer) ComputeStats(records []model.EventRecord) model.PeriodStats {
	stats := ComputeStats(records, a.loc)
	stats.StreakDays = a.StreakDays(records)
	return stats
}

// StreakDays counts consecutive active days ending today or yesterday.
func (a *Analyzer) StreakDays(records []model.EventRecord) int {
	return StreakDays(records, a.now().In(a.loc))
}

// DailyBreakdown groups completed records by calendar day.
func (a *Analyzer) DailyBreakdown(records []model.EventRecord) []model.DailyRow {
	return DailyBreakdown(records, a.loc)
}

// HourlyPattern sums completed work minutes per hour of day.
func (a *Analyzer) HourlyPattern(records []model.EventRecord) [24]float64 {
	return HourlyPattern(records, a.loc)
}

// QuickStats summarises today, the last week and all time.
func (a *Analyzer) QuickStats() model.QuickStats {
	total := a.ComputeStats(a.records)
	today := ComputeStats(a.FilterByPeriod(model.PeriodDay), a.loc)
	week := ComputeStats(a.FilterByPeriod(model.PeriodWeek), a.loc)
	return model.QuickStats{
		TodaySessions: today.TotalSessions,
		WeekSessions:  week.TotalSessions,
		TotalSessions: total.TotalSessions,
		TotalMinutes:  int(total.TotalWorkMinutes + total.TotalBreakMinutes),
		Streak:        total.StreakDays,
	}
}

// FilterByPeriod keeps records at or after the period cutoff. day starts at
// local midnight; week, month and year are trailing 7, 30 and 365 days.
func FilterByPeriod(records []model.EventRecord, period model.Period, now time.Time) []model.EventRecord {
	var cutoff time.Time
	switch period {
	case model.PeriodDay:
		cutoff = startOfDay(now)
	case model.PeriodWeek:
		cutoff = now.AddDate(0, 0, -7)
	case model.PeriodMonth:
		cutoff = now.AddDate(0, 0, -30)
	case model.PeriodYear:
		cutoff = now.AddDate(0, 0, -365)
	default:
		return records
	}
	out := make([]model.EventRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Timestamp.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

// ComputeStats aggregates the Completed records. StreakDays is left zero.
func ComputeStats(records []model.EventRecord, loc *time.Location) model.PeriodStats {
	var stats model.PeriodStats
	days := make(map[time.Time]struct{})
	first := true
	for _, rec := range completed(records) {
		stats.TotalSessions++
		days[dateOf(rec.Timestamp, loc)] = struct{}{}
		if rec.SessionType != string(model.SessionWork) {
			stats.BreakSessions++
			stats.TotalBreakMinutes += rec.DurationMinutes
			continue
		}
		stats.WorkSessions++
		stats.TotalWorkMinutes += rec.DurationMinutes
		if first || rec.DurationMinutes > stats.LongestWorkSession {
			stats.LongestWorkSession = rec.DurationMinutes
		}
		if first || rec.DurationMinutes < stats.ShortestWorkSession {
			stats.ShortestWorkSession = rec.DurationMinutes
		}
		first = false
	}

	stats.DaysActive = len(days)
	stats.ProductiveHours = round1(stats.TotalWorkMinutes / 60)
	stats.AvgWorkSession = round1(ratio(stats.TotalWorkMinutes, float64(stats.WorkSessions)))
	stats.AvgBreakSession = round1(ratio(stats.TotalBreakMinutes, float64(stats.BreakSessions)))
	stats.WorkRatio = round1(ratio(float64(stats.WorkSessions), float64(stats.TotalSessions)) * 100)
	stats.AvgSessionsPerDay = round1(ratio(float64(stats.TotalSessions), float64(stats.DaysActive)))
	stats.AvgWorkMinutesPerDay = round1(ratio(stats.TotalWorkMinutes, float64(stats.DaysActive)))
	return stats
}

// StreakDays counts consecutive calendar days with a completed session. The
// streak is zero unless the most recent active day is today or yesterday.
func StreakDays(records []model.EventRecord, now time.Time) int {
	loc := now.Location()
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, rec := range completed(records) {
		d := dateOf(rec.Timestamp, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	if !dates[0].Equal(today) && !dates[0].Equal(yesterday) {
		return 0
	}
	streak := 1
	last := dates[0]
	for _, d := range dates[1:] {
		if !d.Equal(last.AddDate(0, 0, -1)) {
			break
		}
		streak++
		last = d
	}
	return streak
}

// DailyBreakdown returns one row per active day, newest first.
func DailyBreakdown(records []model.EventRecord, loc *time.Location) []model.DailyRow {
	byDate := make(map[time.Time]*model.DailyRow)
	for _, rec := range completed(records) {
		d := dateOf(rec.Timestamp, loc)
		row, ok := byDate[d]
		if !ok {
			row = &model.DailyRow{Date: d}
			byDate[d] = row
		}
		row.TotalSessions++
		if rec.SessionType == string(model.SessionWork) {
			row.WorkSessions++
			row.WorkMinutes += rec.DurationMinutes
		} else {
			row.BreakMinutes += rec.DurationMinutes
		}
	}
	rows := make([]model.DailyRow, 0, len(byDate))
	for _, row := range byDate {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows
}

// HourlyPattern sums completed work minutes by the hour they were logged.
func HourlyPattern(records []model.EventRecord, loc *time.Location) [24]float64 {
	var hours [24]float64
	for _, rec := range completed(records) {
		if rec.SessionType != string(model.SessionWork) {
			continue
		}
		hours[rec.Timestamp.In(loc).Hour()] += rec.DurationMinutes
	}
	return hours
}

func completed(records []model.EventRecord) []model.EventRecord {
	out := make([]model.EventRecord, 0, len(records))
	for _, rec := range records {
		if rec.Event == model.EventCompleted {
			out = append(out, rec)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t.In(loc))
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
