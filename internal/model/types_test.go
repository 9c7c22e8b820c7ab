package model

import "testing"

func TestParseSessionTypeAliases(t *testing.T) {
	cases := map[string]SessionType{
		"":            SessionWork,
		"Work":        SessionWork,
		"short":       SessionShortBreak,
		"break":       SessionShortBreak,
		"long_break":  SessionLongBreak,
		"long":        SessionLongBreak,
		" custom ":    SessionCustom,
		"short_break": SessionShortBreak,
	}
	for raw, want := range cases {
		got, err := ParseSessionType(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}
	if _, err := ParseSessionType("nap"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestSessionRemainingAndProgress(t *testing.T) {
	s := Session{DurationSeconds: 120, ElapsedSeconds: 30}
	if got := s.RemainingSeconds(); got != 90 {
		t.Fatalf("expected 90 remaining, got %d", got)
	}
	if got := s.Progress(); got != 25 {
		t.Fatalf("expected 25%% progress, got %.2f", got)
	}
	if got := (Session{}).Progress(); got != 0 {
		t.Fatalf("expected 0 progress for empty session, got %.2f", got)
	}
}

func TestDefaultSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if got := s.DefaultMinutes(SessionLongBreak); got != 15 {
		t.Fatalf("expected 15 long break minutes, got %.1f", got)
	}
	s.LongBreakInterval = 0
	if err := s.Validate(); err == nil {
		t.Fatalf("expected interval validation error")
	}
}

func TestDailyRowWorkHours(t *testing.T) {
	row := DailyRow{WorkMinutes: 100}
	if got := row.WorkHours(); got != 1.7 {
		t.Fatalf("expected 1.7 hours, got %.2f", got)
	}
}
