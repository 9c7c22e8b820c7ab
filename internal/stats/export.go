package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
)

// ExportStamp is the time layout embedded in export file names.
const ExportStamp = "20060102_150405"

type summaryJSON struct {
	Period              string    `json:"period"`
	TotalSessions       int       `json:"total_sessions"`
	WorkSessions        int       `json:"work_sessions"`
	BreakSessions       int       `json:"break_sessions"`
	TotalWorkTime       float64   `json:"total_work_time"`
	TotalBreakTime      float64   `json:"total_break_time"`
	ProductiveHours     float64   `json:"productive_hours"`
	DaysActive          int       `json:"days_active"`
	AvgWorkSession      float64   `json:"avg_work_session"`
	AvgBreakSession     float64   `json:"avg_break_session"`
	WorkRatio           float64   `json:"work_ratio"`
	AvgSessionsPerDay   float64   `json:"avg_sessions_per_day"`
	AvgWorkPerDay       float64   `json:"avg_work_per_day"`
	LongestWorkSession  float64   `json:"longest_work_session"`
	ShortestWorkSession float64   `json:"shortest_work_session"`
	StreakDays          int       `json:"streak_days"`
	HourlyWorkMinutes   []float64 `json:"hourly_work_minutes"`
}

// ExportCSV writes the raw records and the daily breakdown as two CSV files
// under dir and returns their paths.
func ExportCSV(dir string, records []model.EventRecord, d Dashboard, stamp string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	sessionsPath := filepath.Join(dir, "focus_sessions_"+stamp+".csv")
	sessionRows := [][]string{{"Timestamp", "Action", "Type", "Duration", "Date"}}
	for _, rec := range records {
		sessionRows = append(sessionRows, []string{
			rec.Timestamp.Format(eventlog.TimestampLayout),
			string(rec.Event),
			rec.SessionType,
			eventlog.FormatMinutes(rec.DurationMinutes),
			rec.Timestamp.Format("2006-01-02"),
		})
	}
	if err := writeCSV(sessionsPath, sessionRows); err != nil {
		return nil, err
	}

	dailyPath := filepath.Join(dir, "daily_breakdown_"+stamp+".csv")
	dailyRows := [][]string{{"Date", "Sessions", "Work Sessions", "Work Minutes", "Work Hours", "Break Minutes"}}
	for _, r := range d.Daily {
		dailyRows = append(dailyRows, []string{
			r.Date.Format("2006-01-02"),
			strconv.Itoa(r.TotalSessions),
			strconv.Itoa(r.WorkSessions),
			FormatNumber(r.WorkMinutes),
			FormatNumber(r.WorkHours()),
			FormatNumber(r.BreakMinutes),
		})
	}
	if err := writeCSV(dailyPath, dailyRows); err != nil {
		return nil, err
	}
	return []string{sessionsPath, dailyPath}, nil
}

// ExportJSON writes the summary statistics under dir and returns the path.
func ExportJSON(dir string, d Dashboard, stamp string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	s := d.Stats
	payload := summaryJSON{
		Period:              string(d.Period),
		TotalSessions:       s.TotalSessions,
		WorkSessions:        s.WorkSessions,
		BreakSessions:       s.BreakSessions,
		TotalWorkTime:       s.TotalWorkMinutes,
		TotalBreakTime:      s.TotalBreakMinutes,
		ProductiveHours:     s.ProductiveHours,
		DaysActive:          s.DaysActive,
		AvgWorkSession:      s.AvgWorkSession,
		AvgBreakSession:     s.AvgBreakSession,
		WorkRatio:           s.WorkRatio,
		AvgSessionsPerDay:   s.AvgSessionsPerDay,
		AvgWorkPerDay:       s.AvgWorkMinutesPerDay,
		LongestWorkSession:  s.LongestWorkSession,
		ShortestWorkSession: s.ShortestWorkSession,
		StreakDays:          s.StreakDays,
		HourlyWorkMinutes:   d.Hourly[:],
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	path := filepath.Join(dir, "summary_stats_"+stamp+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
