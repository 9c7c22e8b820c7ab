// Package notify delivers session announcements to the desktop or console.
package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"
)

// ErrUnsupported is returned by sinks that cannot deliver on this system.
var ErrUnsupported = errors.New("notifications unsupported")

// Kind selects the styling of a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

// Notification is one message to deliver.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

// Sink delivers notifications somewhere.
type Sink interface {
	Show(n Notification) error
}

// Multi delivers every notification to all of its sinks. It fails only when
// none of them accepts the notification.
type Multi []Sink

// Show delivers n to every sink. The failures are joined only when no sink accepted n.
func (m Multi) Show(n Notification) error {
	var errs []error
	delivered := false
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Show(n); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}

// Notifier formats session announcements and hands them to the first sink
// that accepts them.
type Notifier struct {
	sinks  []Sink
	logger hclog.Logger
}

// New returns a notifier that tries sinks in order. With no sinks every
// announcement is dropped.
func New(logger hclog.Logger, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Notifier{sinks: kept, logger: logger}
}

// AnnounceStart reports that a session of t began.
func (n *Notifier) AnnounceStart(t model.SessionType, minutes float64) error {
	return n.Show(StartNotification(t, minutes))
}

// AnnounceEarlyWarning reports that a session is about to end.
func (n *Notifier) AnnounceEarlyWarning(t model.SessionType, minutesRemaining int) error {
	return n.Show(WarningNotification(t, minutesRemaining))
}

// AnnounceCompletion reports that a session ran to the end.
func (n *Notifier) AnnounceCompletion(t model.SessionType, minutes float64) error {
	return n.Show(CompletionNotification(t, minutes))
}

// Show delivers to the first sink that succeeds.
func (n *Notifier) Show(note Notification) error {
	var errs []error
	for _, s := range n.sinks {
		err := s.Show(note)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUnsupported) {
			n.logger.Debug("notification sink failed, trying next", "title", note.Title, "error", err)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StartNotification builds the message shown when a session starts.
func StartNotification(t model.SessionType, minutes float64) Notification {
	return Notification{
		Kind:    KindInfo,
		Title:   "Focus Session Started",
		Message: fmt.Sprintf("%s session (%s min)", titleCase(t.Label()), eventlog.FormatMinutes(minutes)),
	}
}

// WarningNotification builds the early warning message.
func WarningNotification(t model.SessionType, minutesRemaining int) Notification {
	return Notification{
		Kind:    KindWarning,
		Title:   "Time Warning",
		Message: fmt.Sprintf("%d minute(s) remaining in your %s session", minutesRemaining, t.Label()),
	}
}

// CompletionNotification builds the message shown when a session completes.
func CompletionNotification(t model.SessionType, minutes float64) Notification {
	return Notification{
		Kind:    KindSuccess,
		Title:   "Session Complete!",
		Message: fmt.Sprintf("Great work! You completed a %s-minute %s session.", eventlog.FormatMinutes(minutes), t.Label()),
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
