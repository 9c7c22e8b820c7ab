package session

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuifocus/internal/model"
)

func TestChainPolicyLongBreakEveryInterval(t *testing.T) {
	policy := NewChainPolicy(model.DefaultSettings())
	want := []model.SessionType{
		model.SessionShortBreak,
		model.SessionShortBreak,
		model.SessionShortBreak,
		model.SessionLongBreak,
		model.SessionShortBreak,
		model.SessionShortBreak,
		model.SessionShortBreak,
		model.SessionLongBreak,
	}
	for i, next := range want {
		d := policy.Next(model.SessionWork, i+1)
		if d.Next != next {
			t.Fatalf("after %d work sessions expected %s, got %s", i+1, next, d.Next)
		}
	}
}

func TestChainPolicyDecision(t *testing.T) {
	settings := model.DefaultSettings()
	settings.AutoStartBreak = true
	settings.AutoStartWork = false
	settings.AutoStartDelay = 3 * time.Second
	policy := NewChainPolicy(settings)

	d := policy.Next(model.SessionWork, 1)
	if d.Next != model.SessionShortBreak || d.Minutes != 5 || !d.AutoStart || d.Delay != 3*time.Second {
		t.Fatalf("unexpected decision after work: %+v", d)
	}

	d = policy.Next(model.SessionWork, 4)
	if d.Next != model.SessionLongBreak || d.Minutes != 15 {
		t.Fatalf("unexpected decision after fourth work: %+v", d)
	}

	for _, completed := range []model.SessionType{model.SessionShortBreak, model.SessionLongBreak, model.SessionCustom} {
		d = policy.Next(completed, 4)
		if d.Next != model.SessionWork || d.Minutes != 25 || d.AutoStart {
			t.Fatalf("unexpected decision after %s: %+v", completed, d)
		}
	}
}
