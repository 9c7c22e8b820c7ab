package session

import (
	"time"

	"github.com/verte-zerg/tuifocus/internal/model"
)

// Decision is the follow-up suggested after a session completes.
type Decision struct {
	Next      model.SessionType
	Minutes   float64
	AutoStart bool
	Delay     time.Duration
}

// ChainPolicy picks the next session type from the completed one.
type ChainPolicy struct {
	settings model.Settings
}

func NewChainPolicy(settings model.Settings) ChainPolicy {
	return ChainPolicy{settings: settings}
}

// Next decides what follows a completed session. completedWork is the number
// of work sessions completed so far, including the one that just finished.
// Every intervalth work session is followed by a long break.
func (p ChainPolicy) Next(completed model.SessionType, completedWork int) Decision {
	d := Decision{Delay: p.settings.AutoStartDelay}
	if completed == model.SessionWork {
		interval := p.settings.LongBreakInterval
		if interval > 0 && completedWork > 0 && completedWork%interval == 0 {
			d.Next = model.SessionLongBreak
		} else {
			d.Next = model.SessionShortBreak
		}
		d.AutoStart = p.settings.AutoStartBreak
	} else {
		d.Next = model.SessionWork
		d.AutoStart = p.settings.AutoStartWork
	}
	d.Minutes = p.settings.DefaultMinutes(d.Next)
	return d
}
