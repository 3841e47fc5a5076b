// Package rate implements the publisher pacing primitive spec.md §4.3
// calls for: a rate limiter that suspends the calling goroutine without
// ever registering with a timer/ticker facility, since spec.md is explicit
// that publisher pacing "is a spin-wait — it does not suspend on a timer
// facility." This diverges deliberately from how
// ezex-io-gopkg/scheduler/every.go paces repeated work (a time.Ticker);
// that style fits scheduler's callback-on-an-interval use case but not a
// driver loop that must also keep checking for cancellation and
// backpressure between ticks.
package rate

import (
	"runtime"
	"time"
)

// Pacer enforces a minimum interval between successive "ready" events. A
// Pacer constructed for a non-positive frequency never paces: IsReady always
// reports true.
type Pacer struct {
	interval time.Duration
	last     time.Time
	paced    bool
}

// New creates a Pacer that becomes ready at most frequencyHz times per
// second.
func New(frequencyHz float64) *Pacer {
	if frequencyHz <= 0 {
		return &Pacer{paced: false}
	}

	return &Pacer{
		interval: time.Duration(float64(time.Second) / frequencyHz),
		last:     time.Now(),
		paced:    true,
	}
}

// IsReady reports whether at least one pacing interval has elapsed since the
// last Reset (or since construction, before the first Reset).
func (p *Pacer) IsReady() bool {
	if !p.paced {
		return true
	}

	return time.Since(p.last) >= p.interval
}

// Reset restarts the pacing interval from now.
func (p *Pacer) Reset() {
	p.last = time.Now()
}

// Wait spins until IsReady, yielding the goroutine's time slice between
// checks via runtime.Gosched rather than blocking on a timer, then resets
// the interval. It returns immediately for an unpaced Pacer.
func (p *Pacer) Wait() {
	for !p.IsReady() {
		runtime.Gosched()
	}

	p.Reset()
}
