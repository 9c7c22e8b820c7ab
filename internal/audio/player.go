// Package audio drives an external music player during work sessions.
package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/tuifocus/internal/model"
)

var (
	ErrPlayerUnavailable = errors.New("music player not found")
	ErrNoPlaylist        = errors.New("no playlist configured")
)

// DefaultStopGrace is how long a player gets to exit after SIGTERM.
const DefaultStopGrace = 3 * time.Second

// Options configures a Player.
type Options struct {
	Executable string
	Playlist   string
	Volume     int
	ExtraArgs  string
	StopGrace  time.Duration
	Logger     hclog.Logger
	LookPath   func(file string) (string, error)
}

// Player runs one player process at a time. Pausing stops the process and
// resuming starts it again on the same playlist.
type Player struct {
	options Options

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
}

// New returns a player. Nothing is started until StartPlayback.
func New(options Options) *Player {
	if options.Executable == "" {
		options.Executable = "mpv"
	}
	if options.StopGrace <= 0 {
		options.StopGrace = DefaultStopGrace
	}
	if options.Logger == nil {
		options.Logger = hclog.NewNullLogger()
	}
	if options.LookPath == nil {
		options.LookPath = exec.LookPath
	}
	return &Player{options: options}
}

// FromSettings builds a player from the music settings, resolving the
// playlist with ResolvePlaylist.
func FromSettings(s model.Settings, logger hclog.Logger) *Player {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return New(Options{
		Executable: s.MusicPlayer,
		Playlist:   ResolvePlaylist(s, logger),
		Volume:     s.MusicVolume,
		ExtraArgs:  s.MusicExtraArgs,
		Logger:     logger,
	})
}

// ResolvePlaylist picks what the player should play: the configured
// playlist if it is a URL or exists on disk, then the first *.m3u* file in
// the playlist directory, then the first online playlist. It returns "" when
// nothing is available.
func ResolvePlaylist(s model.Settings, logger hclog.Logger) string {
	if selected := strings.TrimSpace(s.MusicPlaylist); selected != "" {
		if isURL(selected) {
			return selected
		}
		if _, err := os.Stat(selected); err == nil {
			return selected
		}
		logger.Warn("configured playlist not found, using default", "playlist", selected)
	}
	if dir := strings.TrimSpace(s.MusicPlaylistDir); dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.m3u*"))
		if err != nil {
			logger.Warn("failed to list playlist directory", "dir", dir, "error", err)
		}
		sort.Strings(matches)
		if len(matches) > 0 {
			return matches[0]
		}
	}
	for _, url := range s.MusicOnline {
		if url = strings.TrimSpace(url); url != "" {
			return url
		}
	}
	return ""
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// Args returns the command line passed to the player, without the
// executable.
func (p *Player) Args() []string {
	args := []string{
		"--no-video",
		"--shuffle",
		"--loop-playlist",
		"--volume=" + strconv.Itoa(p.options.Volume),
		"--really-quiet",
	}
	args = append(args, strings.Fields(p.options.ExtraArgs)...)
	return append(args, p.options.Playlist)
}

// Playing reports whether a player process is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

func (p *Player) StartPlayback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return nil
	}
	if strings.TrimSpace(p.options.Playlist) == "" {
		return ErrNoPlaylist
	}
	path, err := p.options.LookPath(p.options.Executable)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPlayerUnavailable, p.options.Executable)
	}

	cmd := exec.Command(path, p.Args()...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.options.Executable, err)
	}
	exited := make(chan struct{})
	p.cmd = cmd
	p.exited = exited
	p.options.Logger.Debug("music started", "pid", cmd.Process.Pid, "playlist", p.options.Playlist)

	go func() {
		err := cmd.Wait()
		close(exited)
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			p.exited = nil
			p.options.Logger.Warn("music player exited", "error", err)
		}
		p.mu.Unlock()
	}()
	return nil
}

// StopPlayback terminates the player, escalating to a kill after the grace
// period.
func (p *Player) StopPlayback() error {
	p.mu.Lock()
	cmd := p.cmd
	exited := p.exited
	p.cmd = nil
	p.exited = nil
	p.mu.Unlock()
	if cmd == nil {
		return nil
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = cmd.Process.Kill()
	}
	select {
	case <-exited:
	case <-time.After(p.options.StopGrace):
		p.options.Logger.Warn("music player ignored SIGTERM, killing", "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill %s: %w", p.options.Executable, err)
		}
		<-exited
	}
	p.options.Logger.Debug("music stopped", "pid", cmd.Process.Pid)
	return nil
}

func (p *Player) PausePlayback() error {
	return p.StopPlayback()
}

func (p *Player) ResumePlayback() error {
	return p.StartPlayback()
}
