package channel

// TerminationState models a channel's shutdown progress as a monotonically
// non-decreasing state machine, grounded on the termination_state enum in
// original_source/include/flow/detail/channel.hpp: once a channel starts
// shutting down it can only move forward, never back, even if multiple
// goroutines race to advance it concurrently.
type TerminationState int32

const (
	// Uninitialized is the channel's state while running normally.
	Uninitialized TerminationState = iota
	// SubscriberInitialized means a subscriber has begun shutting the
	// channel down; RequestPermission refuses new claims from then on, and
	// a publisher that already holds a range still stages and publishes it.
	SubscriberInitialized
	// PublisherReceived means a publisher (or a transformer, for its
	// downstream channel) has observed the termination request and stopped
	// claiming new sequences. The first one to do so advances the state.
	PublisherReceived
	// SubscriberFinalized means a subscriber has finished its drain phase.
	// The first one to do so advances the state.
	SubscriberFinalized
)

func (s TerminationState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SubscriberInitialized:
		return "subscriber_initialized"
	case PublisherReceived:
		return "publisher_received"
	case SubscriberFinalized:
		return "subscriber_finalized"
	default:
		return "unknown"
	}
}
