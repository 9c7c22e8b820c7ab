// Package session implements the single-session timer state machine.
package session

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/tuifocus/internal/clock"
	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionActive     = errors.New("a session is already active")
	ErrInvalidDuration   = errors.New("session duration must be positive")
	ErrClosed            = errors.New("session engine is closed")
)

// Options wires an Engine to its collaborators. Only Settings is required.
type Options struct {
	Settings model.Settings
	Events   EventWriter
	Audio    Audio
	Notifier Notifier
	Logger   hclog.Logger

	// TickInterval is the wall-clock length of one elapsed second.
	TickInterval time.Duration
	NewSource    clock.SourceFunc
	StopTimeout  time.Duration

	Now func() time.Time
	// Schedule runs f once after d. Defaults to time.AfterFunc.
	Schedule func(d time.Duration, f func())
}

// Info is a point-in-time copy of the engine state.
type Info struct {
	Session       model.Session
	Remaining     int
	Progress      float64
	SessionCount  int
	CompletedWork int
	Suggestion    *Decision
}

// Engine owns the active session. Public methods are safe for concurrent use;
// the clock goroutine only asks the engine to advance by one second.
type Engine struct {
	settings    model.Settings
	policy      ChainPolicy
	events      EventWriter
	audio       Audio
	notifier    Notifier
	logger      hclog.Logger
	interval    time.Duration
	newSource   clock.SourceFunc
	stopTimeout time.Duration
	now         func() time.Time
	schedule    func(time.Duration, func())

	mu            sync.Mutex
	listeners     []Listener
	session       model.Session
	generation    uint64
	warned        bool
	clk           *clock.Clock
	sessionCount  int
	completedWork int
	suggestion    *Decision
	closed        bool
}

// New validates the settings and returns an idle engine in the Ready state.
func New(options Options) (*Engine, error) {
	if err := options.Settings.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		settings:    options.Settings,
		policy:      NewChainPolicy(options.Settings),
		events:      options.Events,
		audio:       options.Audio,
		notifier:    options.Notifier,
		logger:      options.Logger,
		interval:    options.TickInterval,
		newSource:   options.NewSource,
		stopTimeout: options.StopTimeout,
		now:         options.Now,
		schedule:    options.Schedule,
		session:     model.Session{State: model.StateReady},
	}
	if e.audio == nil {
		e.audio = nopAudio{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.logger == nil {
		e.logger = hclog.NewNullLogger()
	}
	if e.interval <= 0 {
		e.interval = time.Second
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.schedule == nil {
		e.schedule = func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		}
	}
	return e, nil
}

// AddListener registers l for every future event.
func (e *Engine) AddListener(l Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() model.Settings {
	return e.settings
}

// Start begins a session of type t. minutes <= 0 selects the configured
// default for t. A pending auto-start is superseded.
func (e *Engine) Start(t model.SessionType, minutes float64) error {
	return e.start(t, minutes, 0)
}

// start launches a session. A non-zero expect restricts the start to the
// generation that scheduled it, so a superseded auto-start becomes a no-op.
func (e *Engine) start(t model.SessionType, minutes float64, expect uint64) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if expect != 0 && expect != e.generation {
		e.mu.Unlock()
		return nil
	}
	if state := e.session.State; state == model.StateRunning || state == model.StatePaused {
		e.mu.Unlock()
		return fmt.Errorf("start %s: %w (%s)", t, ErrSessionActive, state)
	}
	if minutes <= 0 {
		minutes = e.settings.DefaultMinutes(t)
	}
	seconds := int(math.Round(minutes * 60))
	if seconds <= 0 {
		e.mu.Unlock()
		return fmt.Errorf("start %s: %w", t, ErrInvalidDuration)
	}

	old := e.session.State
	e.generation++
	gen := e.generation
	id := uuid.NewString()
	e.session = model.Session{
		ID:              id,
		Type:            t,
		DurationSeconds: seconds,
		State:           model.StateRunning,
		StartedAt:       e.now(),
	}
	e.warned = false
	e.suggestion = nil
	startedAt := e.session.StartedAt
	e.mu.Unlock()

	log := e.sessionLogger(id)
	log.Debug("session started", "type", t, "minutes", minutes, "seconds", seconds)
	e.fireStateChange(old, model.StateRunning)
	if t == model.SessionWork && e.settings.MusicEnabled {
		e.callCollaborator(log, "start playback", e.audio.StartPlayback)
	}
	e.callCollaborator(log, "announce start", func() error {
		return e.notifier.AnnounceStart(t, minutes)
	})
	e.writeEvent(log, startedAt, model.EventStarted, t, minutes)

	e.mu.Lock()
	if gen == e.generation && !e.closed && e.session.State != model.StateStopped {
		e.clk = clock.Start(clock.Options{
			Interval:    e.interval,
			NewSource:   e.newSource,
			StopTimeout: e.stopTimeout,
		}, func(time.Time) bool {
			return e.advance(gen)
		})
	}
	e.mu.Unlock()
	return nil
}

// Pause freezes elapsed time. The clock keeps ticking.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.session.State != model.StateRunning {
		state := e.session.State
		e.mu.Unlock()
		return fmt.Errorf("pause from %s: %w", state, ErrInvalidTransition)
	}
	now := e.now()
	e.session.State = model.StatePaused
	e.session.PausedAt = now
	t := e.session.Type
	elapsed := e.session.ElapsedSeconds
	log := e.sessionLogger(e.session.ID)
	e.mu.Unlock()

	log.Debug("session paused", "type", t, "elapsed", elapsed)
	e.fireStateChange(model.StateRunning, model.StatePaused)
	if t == model.SessionWork && e.settings.MusicEnabled {
		e.callCollaborator(log, "pause playback", e.audio.PausePlayback)
	}
	e.writeEvent(log, now, model.EventPaused, t, eventlog.RoundMinutes(float64(elapsed)/60))
	return nil
}

// Resume continues a paused session.
func (e *Engine) Resume() error {
	e.mu.Lock()
	if e.session.State != model.StatePaused {
		state := e.session.State
		e.mu.Unlock()
		return fmt.Errorf("resume from %s: %w", state, ErrInvalidTransition)
	}
	e.session.State = model.StateRunning
	e.session.PausedAt = time.Time{}
	t := e.session.Type
	elapsed := e.session.ElapsedSeconds
	log := e.sessionLogger(e.session.ID)
	e.mu.Unlock()

	log.Debug("session resumed", "type", t, "elapsed", elapsed)
	e.fireStateChange(model.StatePaused, model.StateRunning)
	if t == model.SessionWork && e.settings.MusicEnabled {
		e.callCollaborator(log, "resume playback", e.audio.ResumePlayback)
	}
	e.writeEvent(log, e.now(), model.EventResumed, t, eventlog.RoundMinutes(float64(elapsed)/60))
	return nil
}

// Stop abandons the active session and records the time spent so far.
func (e *Engine) Stop() error {
	e.mu.Lock()
	old := e.session.State
	if old != model.StateRunning && old != model.StatePaused {
		e.mu.Unlock()
		return fmt.Errorf("stop from %s: %w", old, ErrInvalidTransition)
	}
	clk := e.clk
	e.clk = nil
	e.generation++
	e.session.State = model.StateStopped
	e.session.PausedAt = time.Time{}
	t := e.session.Type
	elapsed := e.session.ElapsedSeconds
	log := e.sessionLogger(e.session.ID)
	e.mu.Unlock()

	log.Debug("session stopped", "type", t, "elapsed", elapsed)
	if clk != nil && !clk.Stop() {
		log.Warn("clock did not exit before timeout", "type", t)
	}
	e.fireStateChange(old, model.StateStopped)
	e.callCollaborator(log, "stop playback", e.audio.StopPlayback)
	e.writeEvent(log, e.now(), model.EventStopped, t, eventlog.RoundMinutes(float64(elapsed)/60))
	return nil
}

// Close stops any active session and cancels pending auto-starts. The engine
// rejects new sessions afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.generation++
	state := e.session.State
	e.mu.Unlock()

	if state == model.StateRunning || state == model.StatePaused {
		if err := e.Stop(); err != nil && !errors.Is(err, ErrInvalidTransition) {
			return err
		}
	}
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() model.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State
}

// CompletedWork returns the number of work sessions completed so far.
func (e *Engine) CompletedWork() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completedWork
}

// Snapshot returns a copy of the session and counters.
func (e *Engine) Snapshot() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := Info{
		Session:       e.session,
		Remaining:     e.session.RemainingSeconds(),
		Progress:      e.session.Progress(),
		SessionCount:  e.sessionCount,
		CompletedWork: e.completedWork,
	}
	if e.suggestion != nil {
		d := *e.suggestion
		info.Suggestion = &d
	}
	return info
}

// advance runs on the clock goroutine once per tick. It returns false once
// the session it was started for is over.
func (e *Engine) advance(gen uint64) bool {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return false
	}
	switch e.session.State {
	case model.StatePaused:
		e.mu.Unlock()
		return true
	case model.StateRunning:
	default:
		e.mu.Unlock()
		return false
	}
	if e.session.ElapsedSeconds < e.session.DurationSeconds {
		e.session.ElapsedSeconds++
	}
	elapsed := e.session.ElapsedSeconds
	total := e.session.DurationSeconds
	remaining := total - elapsed
	t := e.session.Type
	id := e.session.ID
	warn := false
	if !e.warned && remaining > 0 && float64(remaining) <= e.settings.EarlyWarnMinutes*60 {
		e.warned = true
		warn = true
	}
	e.mu.Unlock()

	if warn {
		left := int(math.Round(float64(remaining) / 60))
		if left < 1 {
			left = 1
		}
		e.callCollaborator(e.sessionLogger(id), "announce early warning", func() error {
			return e.notifier.AnnounceEarlyWarning(t, left)
		})
	}
	e.eachListener("tick", func(l Listener) {
		l.OnTick(elapsed, total)
	})
	if elapsed >= total {
		e.complete(gen)
		return false
	}
	return true
}

func (e *Engine) complete(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.session.State != model.StateRunning {
		e.mu.Unlock()
		return
	}
	e.session.State = model.StateCompleted
	e.clk = nil
	e.sessionCount++
	t := e.session.Type
	if t == model.SessionWork {
		e.completedWork++
	}
	minutes := float64(e.session.DurationSeconds) / 60
	decision := e.policy.Next(t, e.completedWork)
	e.suggestion = &decision
	log := e.sessionLogger(e.session.ID)
	e.mu.Unlock()

	log.Debug("session completed", "type", t, "minutes", minutes, "next", decision.Next)
	e.fireStateChange(model.StateRunning, model.StateCompleted)
	if t == model.SessionWork && e.settings.MusicEnabled && e.settings.StopMusicOnComplete {
		e.callCollaborator(log, "stop playback", e.audio.StopPlayback)
	}
	e.callCollaborator(log, "announce completion", func() error {
		return e.notifier.AnnounceCompletion(t, minutes)
	})
	e.writeEvent(log, e.now(), model.EventCompleted, t, minutes)
	e.eachListener("complete", func(l Listener) {
		l.OnComplete(t, minutes)
	})
	e.eachListener("suggest", func(l Listener) {
		l.OnSuggest(decision)
	})
	if decision.AutoStart {
		e.scheduleAutoStart(log, gen, decision)
	}
}

// scheduleAutoStart starts the suggested session after its delay unless
// another session was started, or the engine closed, in the meantime.
// The log carries the id of the completed session.
func (e *Engine) scheduleAutoStart(log hclog.Logger, gen uint64, d Decision) {
	log.Debug("auto-start scheduled", "type", d.Next, "delay", d.Delay)
	e.schedule(d.Delay, func() {
		if err := e.start(d.Next, d.Minutes, gen); err != nil && !errors.Is(err, ErrClosed) {
			log.Warn("auto-start failed", "type", d.Next, "error", err)
		}
	})
}

func (e *Engine) sessionLogger(id string) hclog.Logger {
	return e.logger.With("session", id)
}

func (e *Engine) writeEvent(log hclog.Logger, at time.Time, kind model.EventKind, t model.SessionType, minutes float64) {
	if e.events == nil {
		return
	}
	rec := model.EventRecord{
		Timestamp:       at,
		Event:           kind,
		SessionType:     string(t),
		DurationMinutes: minutes,
	}
	if err := e.events.Append(rec); err != nil {
		log.Error("failed to write event log", "event", kind, "type", t, "error", err)
	}
}

func (e *Engine) fireStateChange(from, to model.SessionState) {
	e.eachListener("state change", func(l Listener) {
		l.OnStateChange(from, to)
	})
}

func (e *Engine) eachListener(name string, fn func(Listener)) {
	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		e.guard(name, func() {
			fn(l)
		})
	}
}

func (e *Engine) callCollaborator(log hclog.Logger, name string, fn func() error) {
	e.guard(name, func() {
		if err := fn(); err != nil {
			log.Warn("collaborator call failed", "call", name, "error", err)
		}
	})
}

func (e *Engine) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("callback panicked", "callback", name, "panic", r)
		}
	}()
	fn()
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
