// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// SessionType identifies the kind of timed session.
type SessionType string

const (
	SessionWork       SessionType = "work"
	SessionShortBreak SessionType = "short_break"
	SessionLongBreak  SessionType = "long_break"
	SessionCustom     SessionType = "custom"
)

// SessionTypes lists every known session type in display order.
var SessionTypes = []SessionType{SessionWork, SessionShortBreak, SessionLongBreak, SessionCustom}

// ParseSessionType accepts the canonical names plus the short CLI aliases.
func ParseSessionType(raw string) (SessionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "work", "focus", "":
		return SessionWork, nil
	case "short_break", "short", "break":
		return SessionShortBreak, nil
	case "long_break", "long":
		return SessionLongBreak, nil
	case "custom":
		return SessionCustom, nil
	}
	return "", fmt.Errorf("unknown session type %q (use work, short, long or custom)", raw)
}

// IsBreak reports whether the type is a short or long break.
func (t SessionType) IsBreak() bool {
	return t == SessionShortBreak || t == SessionLongBreak
}

// Label returns a human readable name, e.g. "short break".
func (t SessionType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// SessionState is the lifecycle state of the active session.
type SessionState string

const (
	StateReady     SessionState = "ready"
	StateRunning   SessionState = "running"
	StatePaused    SessionState = "paused"
	StateCompleted SessionState = "completed"
	StateStopped   SessionState = "stopped"
)

// Session is the currently active or last-run session.
type Session struct {
	ID              string
	Type            SessionType
	DurationSeconds int
	ElapsedSeconds  int
	State           SessionState
	StartedAt       time.Time
	PausedAt        time.Time
}

// RemainingSeconds never goes below zero.
func (s Session) RemainingSeconds() int {
	remaining := s.DurationSeconds - s.ElapsedSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns completion in the range 0-100.
func (s Session) Progress() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	p := float64(s.ElapsedSeconds) / float64(s.DurationSeconds) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// EventKind is the verb written to the event log.
type EventKind string

const (
	EventStarted   EventKind = "Started"
	EventPaused    EventKind = "Paused"
	EventResumed   EventKind = "Resumed"
	EventStopped   EventKind = "Stopped"
	EventCompleted EventKind = "Completed"
)

// EventRecord is one line of the event log.
type EventRecord struct {
	Timestamp       time.Time
	Event           EventKind
	SessionType     string
	DurationMinutes float64
}

// Period selects a trailing window of records.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period name.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q (use day, week, month, year or all)", raw)
}

// PeriodStats aggregates completed sessions within a window.
type PeriodStats struct {
	TotalSessions        int
	WorkSessions         int
	BreakSessions        int
	TotalWorkMinutes     float64
	TotalBreakMinutes    float64
	ProductiveHours      float64
	AvgWorkSession       float64
	AvgBreakSession      float64
	WorkRatio            float64
	DaysActive           int
	AvgSessionsPerDay    float64
	AvgWorkMinutesPerDay float64
	LongestWorkSession   float64
	ShortestWorkSession  float64
	StreakDays           int
}

// DailyRow summarises one calendar day of completed sessions.
type DailyRow struct {
	Date          time.Time
	TotalSessions int
	WorkSessions  int
	WorkMinutes   float64
	BreakMinutes  float64
}

// WorkHours converts work minutes to hours rounded to one decimal.
func (r DailyRow) WorkHours() float64 {
	return float64(int(r.WorkMinutes/60*10+0.5)) / 10
}

// QuickStats is the compact summary shown by status displays.
type QuickStats struct {
	TodaySessions int
	WeekSessions  int
	TotalSessions int
	TotalMinutes  int
	Streak        int
}
