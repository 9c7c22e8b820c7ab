package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlConfig uses the key names of the older config.yml format.
type yamlConfig struct {
	WorkMins          *float64 `yaml:"work_mins"`
	ShortBreakMins    *float64 `yaml:"short_break_mins"`
	LongBreakMins     *float64 `yaml:"long_break_mins"`
	LongBreakInterval *int     `yaml:"long_break_interval"`
	EarlyWarning      *float64 `yaml:"notify_early_warning"`

	AutoStartBreak *bool    `yaml:"auto_start_break"`
	AutoStartWork  *bool    `yaml:"auto_start_work"`
	AutoStartDelay *float64 `yaml:"auto_start_delay"`

	ClassicalMusic   *bool     `yaml:"classical_music"`
	PauseMusicOnBrk  *bool     `yaml:"pause_music_on_break"`
	MpvExecutable    *string   `yaml:"mpv_executable"`
	DefaultPlaylist  *string   `yaml:"classical_music_default_playlist"`
	PlaylistDir      *string   `yaml:"classical_music_playlist_dir"`
	OnlinePlaylists  *[]string `yaml:"classical_music_online_playlists"`
	MusicVolume      *int      `yaml:"classical_music_volume"`
	MpvExtraArgs     *string   `yaml:"mpv_extra_args"`
	Notify           *bool     `yaml:"notify"`
	DesktopNotify    *bool     `yaml:"desktop_notifications"`
	NotifyPersistSec *int      `yaml:"notification_persistence"`
	LogPath          *string   `yaml:"log_path"`
}

func loadYAMLConfig(path string) (FileConfig, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return fileData.fileConfig(), nil
}

func (y yamlConfig) fileConfig() FileConfig {
	return FileConfig{
		Timer: TimerConfig{
			WorkMins:          y.WorkMins,
			ShortBreakMins:    y.ShortBreakMins,
			LongBreakMins:     y.LongBreakMins,
			LongBreakInterval: y.LongBreakInterval,
			EarlyWarningMins:  y.EarlyWarning,
		},
		Behavior: BehaviorConfig{
			AutoStartBreak: y.AutoStartBreak,
			AutoStartWork:  y.AutoStartWork,
			AutoStartDelay: y.AutoStartDelay,
		},
		Music: MusicConfig{
			Enabled:        y.ClassicalMusic,
			StopOnComplete: y.PauseMusicOnBrk,
			Player:         y.MpvExecutable,
			Playlist:       y.DefaultPlaylist,
			PlaylistDir:    y.PlaylistDir,
			Online:         y.OnlinePlaylists,
			Volume:         y.MusicVolume,
			ExtraArgs:      y.MpvExtraArgs,
		},
		Notify: NotifyConfig{
			Enabled:  y.Notify,
			Desktop:  y.DesktopNotify,
			Duration: y.NotifyPersistSec,
		},
		Log: LogConfig{Path: y.LogPath},
	}
}
