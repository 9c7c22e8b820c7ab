// Package clock runs the cancellable per-session tick loop.
package clock

import (
	"sync"
	"time"
)

// DefaultStopTimeout bounds how long Stop waits for the worker to exit.
const DefaultStopTimeout = time.Second

// Source delivers ticks to the loop.
type Source interface {
	C() <-chan time.Time
	Stop()
}

// SourceFunc builds a tick source for the given interval.
type SourceFunc func(interval time.Duration) Source

// Handler is called once per tick on the clock goroutine. Returning false
// ends the loop.
type Handler func(now time.Time) bool

type tickerSource struct {
	ticker *time.Ticker
}

// NewTickerSource is the SourceFunc backed by time.Ticker.
func NewTickerSource(interval time.Duration) Source {
	return &tickerSource{ticker: time.NewTicker(interval)}
}

func (s *tickerSource) C() <-chan time.Time {
	return s.ticker.C
}

func (s *tickerSource) Stop() {
	s.ticker.Stop()
}

// Clock is one running tick loop. A Clock is not restartable; start a new
// one for every session.
type Clock struct {
	source      Source
	handler     Handler
	stopTimeout time.Duration

	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

// Options tunes a Clock.
type Options struct {
	Interval    time.Duration
	NewSource   SourceFunc
	StopTimeout time.Duration
}

// Start launches the loop on its own goroutine.
func Start(options Options, handler Handler) *Clock {
	if options.Interval <= 0 {
		options.Interval = time.Second
	}
	if options.NewSource == nil {
		options.NewSource = NewTickerSource
	}
	if options.StopTimeout <= 0 {
		options.StopTimeout = DefaultStopTimeout
	}
	c := &Clock{
		source:      options.NewSource(options.Interval),
		handler:     handler,
		stopTimeout: options.StopTimeout,
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
	}
	go c.run()
	return c
}

// Stop signals cancellation and waits, bounded by the stop timeout, for
// the loop to exit. It reports whether the loop has exited. Safe to call
// more than once and from any goroutine.
func (c *Clock) Stop() bool {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	select {
	case <-c.exited:
		return true
	case <-time.After(c.stopTimeout):
		return false
	}
}

// Exited is closed once the loop has returned.
func (c *Clock) Exited() <-chan struct{} {
	return c.exited
}

func (c *Clock) cancelled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Clock) run() {
	defer close(c.exited)
	defer c.source.Stop()

	for {
		if c.cancelled() {
			return
		}
		select {
		case <-c.done:
			return
		case now := <-c.source.C():
			if c.cancelled() {
				return
			}
			if !c.handler(now) {
				return
			}
		}
	}
}
