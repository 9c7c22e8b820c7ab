package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing config, got %v", err)
	}
	s := cfg.Settings()
	if s.WorkMinutes != 25 || s.LongBreakInterval != 4 {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timer]
work-mins = 50
long-break-interval = 3

[behavior]
auto-start-break = false
auto-start-delay = 0.5

[music]
enabled = false
playlist-dir = "/music/lists"
online-playlists = ["https://example.com/a", " "]

[log]
path = "/tmp/focus-test.log"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	s := cfg.Settings()
	if s.WorkMinutes != 50 {
		t.Fatalf("expected 50 work minutes, got %.1f", s.WorkMinutes)
	}
	if s.ShortBreakMinutes != 5 {
		t.Fatalf("expected default short break, got %.1f", s.ShortBreakMinutes)
	}
	if s.LongBreakInterval != 3 {
		t.Fatalf("expected interval 3, got %d", s.LongBreakInterval)
	}
	if s.AutoStartBreak {
		t.Fatalf("expected auto-start-break disabled")
	}
	if s.AutoStartDelay != 500*time.Millisecond {
		t.Fatalf("expected 500ms delay, got %s", s.AutoStartDelay)
	}
	if s.MusicEnabled {
		t.Fatalf("expected music disabled")
	}
	if s.MusicPlaylistDir != "/music/lists" {
		t.Fatalf("unexpected playlist dir %q", s.MusicPlaylistDir)
	}
	if len(s.MusicOnline) != 1 || s.MusicOnline[0] != "https://example.com/a" {
		t.Fatalf("unexpected online playlists %v", s.MusicOnline)
	}
	if s.LogPath != "/tmp/focus-test.log" {
		t.Fatalf("unexpected log path %q", s.LogPath)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[timer\nwork-mins ="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadConfigLegacyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `work_mins: 45
short_break_mins: 10
auto_start_work: true
classical_music: false
notify_early_warning: 3
classical_music_playlist_dir: /music/lists
classical_music_online_playlists:
  - https://example.com/b
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load yaml config: %v", err)
	}
	s := cfg.Settings()
	if s.WorkMinutes != 45 || s.ShortBreakMinutes != 10 {
		t.Fatalf("unexpected durations: %+v", s)
	}
	if !s.AutoStartWork {
		t.Fatalf("expected auto-start-work enabled")
	}
	if s.MusicEnabled {
		t.Fatalf("expected music disabled")
	}
	if s.EarlyWarnMinutes != 3 {
		t.Fatalf("expected early warning 3, got %.1f", s.EarlyWarnMinutes)
	}
	if s.MusicPlaylistDir != "/music/lists" || len(s.MusicOnline) != 1 || s.MusicOnline[0] != "https://example.com/b" {
		t.Fatalf("unexpected playlist settings: dir=%q online=%v", s.MusicPlaylistDir, s.MusicOnline)
	}
	if s.LongBreakMinutes != 15 {
		t.Fatalf("expected default long break, got %.1f", s.LongBreakMinutes)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	if got, want := DefaultConfigPath(), filepath.Join(dir, "cfg", "tuifocus", "config.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultLogPath(), filepath.Join(dir, "data", "tuifocus", "focus.log"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
