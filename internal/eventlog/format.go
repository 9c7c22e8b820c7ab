// Package eventlog reads and writes the append-only session event log.
//
// Each line has the shape
//
//	2006-01-02 15:04:05 - Completed work session (25 minutes)
//
// FormatLine and ParseLine are the only places that know this layout.
package eventlog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuifocus/internal/model"
)

// TimestampLayout is the second-precision timestamp used in the log.
const TimestampLayout = "2006-01-02 15:04:05"

var linePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - (Started|Paused|Resumed|Stopped|Completed) (\w+) session \((\d+(?:\.\d+)?) minutes\)`,
)

// FormatLine renders a record without the trailing newline. Started and
// Completed lines keep the planned minutes exactly; the others are rounded
// to one decimal.
func FormatLine(rec model.EventRecord) string {
	minutes := FormatMinutes(rec.DurationMinutes)
	switch rec.Event {
	case model.EventStarted, model.EventCompleted:
		minutes = strconv.FormatFloat(rec.DurationMinutes, 'f', -1, 64)
	}
	return rec.Timestamp.Format(TimestampLayout) + " - " +
		string(rec.Event) + " " + rec.SessionType + " session (" +
		minutes + " minutes)"
}

// FormatMinutes rounds to one decimal and drops a trailing ".0".
func FormatMinutes(minutes float64) string {
	return strconv.FormatFloat(RoundMinutes(minutes), 'f', -1, 64)
}

// RoundMinutes rounds to one decimal place.
func RoundMinutes(minutes float64) float64 {
	return math.Round(minutes*10) / 10
}

// ParseLine decodes one log line. Timestamps are interpreted in loc.
// Blank, malformed or truncated lines report false.
func ParseLine(line string, loc *time.Location) (model.EventRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.EventRecord{}, false
	}
	match := linePattern.FindStringSubmatch(line)
	if match == nil {
		return model.EventRecord{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(TimestampLayout, match[1], loc)
	if err != nil {
		return model.EventRecord{}, false
	}
	minutes, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return model.EventRecord{}, false
	}
	return model.EventRecord{
		Timestamp:       ts,
		Event:           model.EventKind(match[2]),
		SessionType:     match[3],
		DurationMinutes: minutes,
	}, true
}
