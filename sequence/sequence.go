// Package sequence implements the Disruptor-style coordination primitives
// spec.md §4.1 calls for: a multi-producer sequencer that hands out
// contiguous sequence ranges, gated by one or more subscriber "barriers"
// (consumed-up-to watermarks). It is grounded on the multi_producer_sequencer
// / sequence_barrier pair visible in original_source's
// include/flow/detail/multi_channel.hpp, translated from coroutine
// co_await suspension points to goroutines blocking on a sync.Cond — the
// idiomatic Go analogue of a cooperative suspension point.
//
// Sequences start at 0. -1 denotes "nothing claimed/consumed yet".
package sequence

import (
	"math/bits"
	"sync"
)

// BarrierID identifies one registered gating cursor (one per attached
// subscriber/transformer driver) within a Sequencer.
type BarrierID int

const noSequence int64 = -1

// Sequencer hands out sequence ranges to publishers and tracks which
// sequences have been published, gated by the slowest registered barrier so
// that at most capacity sequences are ever outstanding (spec.md §3 ring
// invariant).
type Sequencer struct {
	mu   sync.Mutex
	cond *sync.Cond

	capacity int64
	mask     int64
	shift    uint

	claimed   int64   // highest sequence handed out so far (-1 = none)
	available []int32 // per-slot publish "round"; round -1 means not yet published this round
	barriers  []int64 // one consumed-up-to cursor per registered subscriber
}

// New creates a Sequencer for a ring of the given capacity, which must be a
// power of two.
func New(capacity int) *Sequencer {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("sequence: capacity must be a power of two")
	}

	s := &Sequencer{
		capacity:  int64(capacity),
		mask:      int64(capacity - 1),
		shift:     uint(bits.Len(uint(capacity)) - 1),
		claimed:   noSequence,
		available: make([]int32, capacity),
	}
	for i := range s.available {
		s.available[i] = -1
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// AddGatingBarrier registers a new consumer cursor, initially at "nothing
// consumed yet". It must be called before any publisher can be granted
// sequences that this barrier should gate — i.e. synchronously when a
// subscriber/transformer routine is attached to the channel, not from
// inside its driver goroutine, so the claim-side backpressure bound holds
// from the first claim onward.
func (s *Sequencer) AddGatingBarrier() BarrierID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.barriers = append(s.barriers, noSequence)

	return BarrierID(len(s.barriers) - 1)
}

// minGateLocked returns the slowest barrier's cursor, or "claimed" (i.e. no
// gating at all) if there are no registered barriers yet.
func (s *Sequencer) minGateLocked() int64 {
	if len(s.barriers) == 0 {
		return s.claimed
	}

	min := s.barriers[0]
	for _, b := range s.barriers[1:] {
		if b < min {
			min = b
		}
	}

	return min
}

// ClaimUpTo claims a contiguous range of up to n sequences, blocking while
// the ring has no free capacity. It may grant fewer than n if the ring is
// nearly full, per spec.md §4.1. cancelled, if non-nil, is a channel that is
// closed to wake a blocked claim early; ok is false if it returned that way
// rather than with a granted range — spec.md §9's "await sequence range"
// must be cancellation-aware the same as the other suspension points.
func (s *Sequencer) ClaimUpTo(n int64, cancelled <-chan struct{}) (lo, hi int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready := func() bool {
		return s.minGateLocked()+s.capacity-s.claimed > 0
	}

	if !s.blockUntilLocked(cancelled, ready) {
		return 0, 0, false
	}

	lo = s.claimed + 1
	gate := s.minGateLocked()
	free := gate + s.capacity - s.claimed
	grant := n
	if grant > free {
		grant = free
	}
	hi = lo + grant - 1
	s.claimed = hi

	return lo, hi, true
}

// ClaimOne claims exactly one sequence, blocking while the ring is full.
func (s *Sequencer) ClaimOne(cancelled <-chan struct{}) (int64, bool) {
	lo, _, ok := s.ClaimUpTo(1, cancelled)

	return lo, ok
}

// Publish marks the contiguous range [lo, hi] as available to subscribers
// and wakes any blocked WaitUntilPublished callers.
func (s *Sequencer) Publish(lo, hi int64) {
	s.mu.Lock()
	for seq := lo; seq <= hi; seq++ {
		s.available[seq&s.mask] = int32(seq >> s.shift)
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *Sequencer) isAvailableLocked(seq int64) bool {
	return s.available[seq&s.mask] == int32(seq>>s.shift)
}

// WaitUntilPublished blocks until seq has been published, then returns the
// highest contiguously published sequence reachable from seq (enabling
// batched consumption without additional suspensions, per spec.md §4.3
// "Batching"). cancelled, if non-nil, is a channel that is closed to wake a
// blocked wait early; ok is false if it returned that way rather than
// because seq was published — spec.md §9's "await published-up-to" must be
// cancellation-aware so a consumer with no live producer still returns from
// spin() in finite time (spec.md §8 property 4).
func (s *Sequencer) WaitUntilPublished(seq int64, cancelled <-chan struct{}) (highest int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.blockUntilLocked(cancelled, func() bool { return s.isAvailableLocked(seq) }) {
		return 0, false
	}

	highest = seq
	for s.isAvailableLocked(highest + 1) {
		highest++
	}

	return highest, true
}

// blockUntilLocked blocks, with s.mu already held, until ready reports true
// or cancelled is closed, returning false in the latter case. A nil
// cancelled channel disables early wakeup: nothing ever closes a nil
// channel, so the loop behaves exactly as a plain cond.Wait loop would.
//
// sync.Cond has no native way to select against a channel, so for the
// lifetime of the wait a watcher goroutine selects on cancelled and
// broadcasts the cond once it fires, waking the waiter to re-check.
func (s *Sequencer) blockUntilLocked(cancelled <-chan struct{}, ready func() bool) bool {
	if ready() {
		return true
	}

	if cancelled == nil {
		for !ready() {
			s.cond.Wait()
		}

		return true
	}

	stopWatch := make(chan struct{})
	defer close(stopWatch)

	go func() {
		select {
		case <-cancelled:
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-stopWatch:
		}
	}()

	for !ready() {
		select {
		case <-cancelled:
			return false
		default:
		}

		s.cond.Wait()
	}

	return true
}

// Ack advances the given barrier's consumed-up-to cursor to seq and wakes
// any publisher blocked waiting for capacity.
func (s *Sequencer) Ack(id BarrierID, seq int64) {
	s.mu.Lock()
	if seq > s.barriers[id] {
		s.barriers[id] = seq
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// BarrierCursor reports the given barrier's current consumed-up-to cursor.
func (s *Sequencer) BarrierCursor(id BarrierID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.barriers[id]
}

// Claimed reports the highest sequence handed out so far (-1 if none).
func (s *Sequencer) Claimed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.claimed
}
