// Package channel implements the bounded, typed, ring-buffered message
// channel spec.md §4.2 describes: publishers claim a range of sequences,
// stage messages into the ring at those sequences, then publish the range
// so subscribers gated behind it can observe it. It is the generic layer
// sitting directly on top of package sequence's Disruptor-style
// coordination, grounded on original_source/include/flow/detail/channel.hpp
// and detail/multi_channel.hpp.
package channel

import (
	"sync/atomic"

	"github.com/robosdk/flow/logger"
	"github.com/robosdk/flow/sequence"
)

// Channel is a bounded ring buffer of T, shared by one or more publishers
// and one or more subscribers. Capacity must be a power of two.
type Channel[T any] struct {
	name     string
	capacity int
	mask     int64

	seq *sequence.Sequencer

	buffer   []T
	sentinel []bool

	state              atomic.Int32
	publishersWaiting  atomic.Int32
	subscribersWaiting atomic.Int32

	log logger.Logger
}

// New creates a channel named name with the given ring capacity.
func New[T any](name string, capacity int) *Channel[T] {
	c := &Channel[T]{
		name:     name,
		capacity: capacity,
		mask:     int64(capacity - 1),
		seq:      sequence.New(capacity),
		buffer:   make([]T, capacity),
		sentinel: make([]bool, capacity),
		log:      logger.Nop(),
	}

	return c
}

// SetLogger replaces the channel's logger, used by registry.MakeIfAbsent to
// hand a channel the network's configured logger once it has been created.
func (c *Channel[T]) SetLogger(log logger.Logger) {
	c.log = log.With("channel", c.name)
}

// Name returns the channel's registry name.
func (c *Channel[T]) Name() string { return c.name }

// Capacity returns the channel's ring capacity.
func (c *Channel[T]) Capacity() int { return c.capacity }

// RequestPermission claims up to n sequences for a publisher to stage into,
// blocking while the ring has no free capacity. ok is false either because
// the channel has already begun terminating (spec.md §4.2 "Termination
// interaction") or because cancelled fired while blocked — either way the
// publisher must stop producing new messages. cancelled may be nil to wait
// without an early-wakeup path.
func (c *Channel[T]) RequestPermission(n int, cancelled <-chan struct{}) (lo, hi int64, ok bool) {
	if TerminationState(c.state.Load()) != Uninitialized {
		return 0, 0, false
	}

	c.publishersWaiting.Add(1)
	lo, hi, ok = c.seq.ClaimUpTo(int64(n), cancelled)
	c.publishersWaiting.Add(-1)

	return lo, hi, ok
}

// StagePublish writes msg into the ring slot for seq. seq must have been
// granted by RequestPermission and not yet published.
func (c *Channel[T]) StagePublish(seq int64, msg T) {
	idx := seq & c.mask
	c.buffer[idx] = msg
	c.sentinel[idx] = false
}

// StageSentinel stages the zero value of T into seq's slot, marked so that
// IsSentinel reports true for it. Sentinels are published only during
// channel drain, to unblock subscribers waiting on a sequence that will
// never carry real data; drivers must never forward a sentinel to a user
// callback.
func (c *Channel[T]) StageSentinel(seq int64) {
	var zero T

	idx := seq & c.mask
	c.buffer[idx] = zero
	c.sentinel[idx] = true
}

// IsSentinel reports whether the message staged at seq is a sentinel.
func (c *Channel[T]) IsSentinel(seq int64) bool {
	return c.sentinel[seq&c.mask]
}

// Publish makes the contiguous range [lo, hi] visible to subscribers.
// Concurrent publishers each publish only the disjoint range they were
// granted by RequestPermission, so concurrent StagePublish/Publish calls
// never touch the same ring slot.
func (c *Channel[T]) Publish(lo, hi int64) {
	c.seq.Publish(lo, hi)
}

// Subscription is one subscriber's or transformer's gating cursor into the
// channel. It is not safe for concurrent use by more than one goroutine —
// each routine attached to the channel owns exactly one Subscription.
type Subscription struct {
	id   sequence.BarrierID
	next int64
}

// Subscribe registers a new subscriber cursor. It must be called
// synchronously when a routine is attached to the channel (e.g. from
// network.Push), before its driver goroutine starts, so that the claim-side
// backpressure bound accounts for it from the first publish onward.
func (c *Channel[T]) Subscribe() *Subscription {
	return &Subscription{id: c.seq.AddGatingBarrier(), next: 0}
}

// Await blocks until sub's next unconsumed sequence has been published,
// then returns [lo, hi]: lo is that sequence and hi is the highest
// contiguously published sequence reachable from it, enabling batched
// consumption. ok is false if cancelled fired before anything was published
// — in which case lo/hi carry no valid range and the caller must not read
// the ring. cancelled may be nil to wait without an early-wakeup path.
func (c *Channel[T]) Await(sub *Subscription, cancelled <-chan struct{}) (lo, hi int64, ok bool) {
	c.subscribersWaiting.Add(1)
	highest, ok := c.seq.WaitUntilPublished(sub.next, cancelled)
	c.subscribersWaiting.Add(-1)

	if !ok {
		return 0, 0, false
	}

	return sub.next, highest, true
}

// ClaimForDrain claims up to n sequences regardless of termination state.
// Drivers use it only during the drain phase, after ConfirmTermination, to
// publish sentinel messages that unblock subscribers still waiting on a
// sequence that will never carry real data.
func (c *Channel[T]) ClaimForDrain(n int) (lo, hi int64) {
	lo, hi, _ = c.seq.ClaimUpTo(int64(n), nil)

	return lo, hi
}

// At returns the message staged at seq. seq must already have been
// published.
func (c *Channel[T]) At(seq int64) T {
	return c.buffer[seq&c.mask]
}

// Ack advances sub past seq, freeing that ring slot's capacity for
// publishers gated on sub, and records seq+1 as the next sequence Await
// will wait for.
func (c *Channel[T]) Ack(sub *Subscription, seq int64) {
	sub.next = seq + 1
	c.seq.Ack(sub.id, seq)
}

// PublishersWaiting reports how many publishers are currently blocked in
// RequestPermission. Subscriber drain loops use this to decide whether
// further draining is needed to unblock them, per spec.md §4.3.
func (c *Channel[T]) PublishersWaiting() int32 {
	return c.publishersWaiting.Load()
}

// SubscribersWaiting reports how many subscribers are currently blocked in
// Await.
func (c *Channel[T]) SubscribersWaiting() int32 {
	return c.subscribersWaiting.Load()
}

// advanceState moves the channel's termination state forward to target if
// it has not already reached or passed it, using a CAS loop so concurrent
// callers racing to advance the state never move it backward.
func (c *Channel[T]) advanceState(target TerminationState) bool {
	for {
		cur := TerminationState(c.state.Load())
		if cur >= target {
			return false
		}

		if c.state.CompareAndSwap(int32(cur), int32(target)) {
			c.log.Debug("termination state advanced", "from", cur, "to", target)

			return true
		}
	}
}

// InitializeTermination moves the channel from Uninitialized to
// SubscriberInitialized. Returns false if termination was already
// initialized.
func (c *Channel[T]) InitializeTermination() bool {
	return c.advanceState(SubscriberInitialized)
}

// ConfirmTermination moves the channel to PublisherReceived, signalling
// that a publisher has observed the termination request. The state does
// not track how many publishers are attached.
func (c *Channel[T]) ConfirmTermination() bool {
	return c.advanceState(PublisherReceived)
}

// FinalizeTermination moves the channel to SubscriberFinalized, signalling
// that a subscriber has finished its drain phase. The state does not track
// how many subscribers are attached.
func (c *Channel[T]) FinalizeTermination() bool {
	return c.advanceState(SubscriberFinalized)
}

// State reports the channel's current termination state.
func (c *Channel[T]) State() TerminationState {
	return TerminationState(c.state.Load())
}
