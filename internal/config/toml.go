// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuifocus/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer    TimerConfig    `toml:"timer"`
	Behavior BehaviorConfig `toml:"behavior"`
	Music    MusicConfig    `toml:"music"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
}

// TimerConfig maps session length settings.
type TimerConfig struct {
	WorkMins          *float64 `toml:"work-mins"`
	ShortBreakMins    *float64 `toml:"short-break-mins"`
	LongBreakMins     *float64 `toml:"long-break-mins"`
	CustomMins        *float64 `toml:"custom-mins"`
	LongBreakInterval *int     `toml:"long-break-interval"`
	EarlyWarningMins  *float64 `toml:"early-warning-mins"`
}

// BehaviorConfig maps the auto-chain settings.
type BehaviorConfig struct {
	AutoStartBreak *bool    `toml:"auto-start-break"`
	AutoStartWork  *bool    `toml:"auto-start-work"`
	AutoStartDelay *float64 `toml:"auto-start-delay"`
}

// MusicConfig maps background music settings.
type MusicConfig struct {
	Enabled        *bool     `toml:"enabled"`
	StopOnComplete *bool     `toml:"stop-on-complete"`
	Player         *string   `toml:"player"`
	Playlist       *string   `toml:"playlist"`
	PlaylistDir    *string   `toml:"playlist-dir"`
	Online         *[]string `toml:"online-playlists"`
	Volume         *int      `toml:"volume"`
	ExtraArgs      *string   `toml:"extra-args"`
}

// NotifyConfig maps notification settings.
type NotifyConfig struct {
	Enabled  *bool `toml:"enabled"`
	Desktop  *bool `toml:"desktop"`
	Duration *int  `toml:"duration"`
}

// LogConfig maps the event log location.
type LogConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a config from the given path. Missing file is not an error.
// Paths ending in .yml or .yaml are read with the legacy YAML key names.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return loadYAMLConfig(path)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Settings overlays every key present in the file onto the defaults.
func (c FileConfig) Settings() model.Settings {
	s := model.DefaultSettings()
	setFloat(&s.WorkMinutes, c.Timer.WorkMins)
	setFloat(&s.ShortBreakMinutes, c.Timer.ShortBreakMins)
	setFloat(&s.LongBreakMinutes, c.Timer.LongBreakMins)
	setFloat(&s.CustomMinutes, c.Timer.CustomMins)
	setInt(&s.LongBreakInterval, c.Timer.LongBreakInterval)
	setFloat(&s.EarlyWarnMinutes, c.Timer.EarlyWarningMins)

	setBool(&s.AutoStartBreak, c.Behavior.AutoStartBreak)
	setBool(&s.AutoStartWork, c.Behavior.AutoStartWork)
	if c.Behavior.AutoStartDelay != nil {
		s.AutoStartDelay = time.Duration(*c.Behavior.AutoStartDelay * float64(time.Second))
	}

	setBool(&s.MusicEnabled, c.Music.Enabled)
	setBool(&s.StopMusicOnComplete, c.Music.StopOnComplete)
	setString(&s.MusicPlayer, c.Music.Player)
	setString(&s.MusicPlaylist, c.Music.Playlist)
	setString(&s.MusicPlaylistDir, c.Music.PlaylistDir)
	if c.Music.Online != nil {
		s.MusicOnline = nil
		for _, url := range *c.Music.Online {
			if url = strings.TrimSpace(url); url != "" {
				s.MusicOnline = append(s.MusicOnline, url)
			}
		}
	}
	setInt(&s.MusicVolume, c.Music.Volume)
	setString(&s.MusicExtraArgs, c.Music.ExtraArgs)

	setBool(&s.NotifyEnabled, c.Notify.Enabled)
	setBool(&s.DesktopNotify, c.Notify.Desktop)
	if c.Notify.Duration != nil {
		s.NotifyDuration = time.Duration(*c.Notify.Duration) * time.Second
	}

	setString(&s.LogPath, c.Log.Path)
	s.LogPath = expandHome(s.LogPath)
	s.MusicPlaylist = expandHome(s.MusicPlaylist)
	s.MusicPlaylistDir = expandHome(s.MusicPlaylistDir)
	return s
}

func setFloat(target *float64, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}

func setString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
