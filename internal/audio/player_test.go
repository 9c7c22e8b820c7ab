package audio

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/tuifocus/internal/model"
)

func TestArgs(t *testing.T) {
	p := New(Options{
		Playlist:  "/music/bach",
		Volume:    40,
		ExtraArgs: " --audio-device=pulse  --ytdl=no ",
	})
	want := []string{
		"--no-video",
		"--shuffle",
		"--loop-playlist",
		"--volume=40",
		"--really-quiet",
		"--audio-device=pulse",
		"--ytdl=no",
		"/music/bach",
	}
	if got := p.Args(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}
}

func TestStartPlaybackErrors(t *testing.T) {
	p := New(Options{})
	if err := p.StartPlayback(); !errors.Is(err, ErrNoPlaylist) {
		t.Fatalf("expected ErrNoPlaylist, got %v", err)
	}

	p = New(Options{
		Playlist: "/music",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	})
	if err := p.StartPlayback(); !errors.Is(err, ErrPlayerUnavailable) {
		t.Fatalf("expected ErrPlayerUnavailable, got %v", err)
	}
	if p.Playing() {
		t.Fatalf("expected player to stay idle")
	}
	if err := p.StopPlayback(); err != nil {
		t.Fatalf("stop while idle: %v", err)
	}
}

func TestStartStopProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fake-player")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	p := New(Options{
		Executable: script,
		Playlist:   "/music",
		StopGrace:  2 * time.Second,
	})

	if err := p.StartPlayback(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !p.Playing() {
		t.Fatalf("expected player to be running")
	}
	if err := p.StartPlayback(); err != nil {
		t.Fatalf("second start should be a no-op: %v", err)
	}

	start := time.Now()
	if err := p.PausePlayback(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if p.Playing() {
		t.Fatalf("expected player to stop on pause")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("stop took %s", elapsed)
	}

	if err := p.ResumePlayback(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !p.Playing() {
		t.Fatalf("expected player to restart on resume")
	}
	if err := p.StopPlayback(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestFromSettingsDefaultsHavePlaylist(t *testing.T) {
	s := model.DefaultSettings()
	if !s.MusicEnabled {
		t.Fatalf("expected music enabled by default")
	}
	p := FromSettings(s, nil)
	p.options.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	if p.options.Playlist != s.MusicOnline[0] {
		t.Fatalf("expected first online playlist, got %q", p.options.Playlist)
	}
	if err := p.StartPlayback(); errors.Is(err, ErrNoPlaylist) {
		t.Fatalf("default settings must resolve a playlist, got %v", err)
	}
}

func TestResolvePlaylist(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "romantic.m3u8", "baroque.m3u"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	online := []string{"https://example.com/list"}

	s := model.Settings{MusicPlaylistDir: dir, MusicOnline: online}
	if got, want := ResolvePlaylist(s, hclog.NewNullLogger()), filepath.Join(dir, "baroque.m3u"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	s.MusicPlaylist = filepath.Join(dir, "romantic.m3u8")
	if got := ResolvePlaylist(s, hclog.NewNullLogger()); got != s.MusicPlaylist {
		t.Fatalf("expected configured playlist, got %s", got)
	}

	s.MusicPlaylist = "https://example.com/selected"
	if got := ResolvePlaylist(s, hclog.NewNullLogger()); got != s.MusicPlaylist {
		t.Fatalf("expected configured URL, got %s", got)
	}

	s = model.Settings{MusicPlaylist: filepath.Join(dir, "missing.m3u"), MusicPlaylistDir: filepath.Join(dir, "none"), MusicOnline: online}
	if got := ResolvePlaylist(s, hclog.NewNullLogger()); got != online[0] {
		t.Fatalf("expected online fallback, got %s", got)
	}

	if got := ResolvePlaylist(model.Settings{}, hclog.NewNullLogger()); got != "" {
		t.Fatalf("expected no playlist, got %s", got)
	}
}
