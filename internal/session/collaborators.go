package session

import "github.com/verte-zerg/tuifocus/internal/model"

// Audio plays background music during work sessions. Calls are best-effort.
type Audio interface {
	StartPlayback() error
	StopPlayback() error
	PausePlayback() error
	ResumePlayback() error
}

// Notifier announces session milestones. Calls are best-effort.
type Notifier interface {
	AnnounceStart(t model.SessionType, minutes float64) error
	AnnounceEarlyWarning(t model.SessionType, minutesRemaining int) error
	AnnounceCompletion(t model.SessionType, minutes float64) error
}

// EventWriter persists lifecycle records.
type EventWriter interface {
	Append(rec model.EventRecord) error
}

// Listener observes the engine. Methods run synchronously on the clock
// goroutine (or the caller's goroutine for Start/Pause/Resume/Stop) and must
// return quickly.
type Listener interface {
	OnTick(elapsed, total int)
	OnComplete(t model.SessionType, minutes float64)
	OnStateChange(from, to model.SessionState)
	OnSuggest(d Decision)
}

// ListenerFuncs adapts optional functions to Listener.
type ListenerFuncs struct {
	Tick        func(elapsed, total int)
	Complete    func(t model.SessionType, minutes float64)
	StateChange func(from, to model.SessionState)
	Suggest     func(d Decision)
}

func (f ListenerFuncs) OnTick(elapsed, total int) {
	if f.Tick != nil {
		f.Tick(elapsed, total)
	}
}

func (f ListenerFuncs) OnComplete(t model.SessionType, minutes float64) {
	if f.Complete != nil {
		f.Complete(t, minutes)
	}
}

func (f ListenerFuncs) OnStateChange(from, to model.SessionState) {
	if f.StateChange != nil {
		f.StateChange(from, to)
	}
}

func (f ListenerFuncs) OnSuggest(d Decision) {
	if f.Suggest != nil {
		f.Suggest(d)
	}
}

type nopAudio struct{}

func (nopAudio) StartPlayback() error  { return nil }
func (nopAudio) StopPlayback() error   { return nil }
func (nopAudio) PausePlayback() error  { return nil }
func (nopAudio) ResumePlayback() error { return nil }

type nopNotifier struct{}

func (nopNotifier) AnnounceStart(model.SessionType, float64) error      { return nil }
func (nopNotifier) AnnounceEarlyWarning(model.SessionType, int) error   { return nil }
func (nopNotifier) AnnounceCompletion(model.SessionType, float64) error { return nil }
