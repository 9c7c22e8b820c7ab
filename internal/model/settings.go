package model

import (
	"fmt"
	"time"
)

// Settings holds the resolved runtime configuration of the timer.
type Settings struct {
	WorkMinutes       float64
	ShortBreakMinutes float64
	LongBreakMinutes  float64
	CustomMinutes     float64
	LongBreakInterval int
	EarlyWarnMinutes  float64

	AutoStartBreak bool
	AutoStartWork  bool
	AutoStartDelay time.Duration

	MusicEnabled        bool
	StopMusicOnComplete bool
	MusicPlayer         string
	MusicPlaylist       string
	MusicPlaylistDir    string
	MusicOnline         []string
	MusicVolume         int
	MusicExtraArgs      string

	NotifyEnabled  bool
	DesktopNotify  bool
	NotifyDuration time.Duration

	LogPath string
}

// DefaultSettings mirrors the defaults of the shipped config template.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:         25,
		ShortBreakMinutes:   5,
		LongBreakMinutes:    15,
		CustomMinutes:       25,
		LongBreakInterval:   4,
		EarlyWarnMinutes:    2,
		AutoStartBreak:      true,
		AutoStartWork:       false,
		AutoStartDelay:      2 * time.Second,
		MusicEnabled:        true,
		StopMusicOnComplete: true,
		MusicPlayer:         "mpv",
		MusicOnline:         DefaultOnlinePlaylists(),
		MusicVolume:         30,
		MusicExtraArgs:      "",
		NotifyEnabled:       true,
		DesktopNotify:       true,
		NotifyDuration:      5 * time.Second,
	}
}

// DefaultOnlinePlaylists are streamed when no local playlist is configured.
func DefaultOnlinePlaylists() []string {
	return []string{
		"https://www.youtube.com/playlist?list=PLRBp0Fe2GpgmgL97AviPkenNzgzHByGgs",
		"https://www.youtube.com/playlist?list=PLcNiN7SthNjHqrGWzTsJq1OAZ8TUQgOfO",
		"https://www.youtube.com/playlist?list=PLTKWrxUB7R8SYCcrfHONp9QbdA3-CKx6p",
	}
}

// DefaultMinutes returns the configured length of a session type.
func (s Settings) DefaultMinutes(t SessionType) float64 {
	switch t {
	case SessionWork:
		return s.WorkMinutes
	case SessionShortBreak:
		return s.ShortBreakMinutes
	case SessionLongBreak:
		return s.LongBreakMinutes
	default:
		return s.CustomMinutes
	}
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	durations := []struct {
		name  string
		value float64
	}{
		{"work-mins", s.WorkMinutes},
		{"short-break-mins", s.ShortBreakMinutes},
		{"long-break-mins", s.LongBreakMinutes},
		{"custom-mins", s.CustomMinutes},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be > 0", d.name)
		}
	}
	if s.LongBreakInterval <= 0 {
		return fmt.Errorf("long-break-interval must be > 0")
	}
	if s.EarlyWarnMinutes < 0 {
		return fmt.Errorf("early-warning-mins must be >= 0")
	}
	if s.AutoStartDelay < 0 {
		return fmt.Errorf("auto-start-delay must be >= 0")
	}
	if s.MusicVolume < 0 || s.MusicVolume > 100 {
		return fmt.Errorf("music volume must be between 0 and 100")
	}
	return nil
}
