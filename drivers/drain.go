package drivers

import "github.com/robosdk/flow/channel"

// drainOne consumes exactly one published batch from ch via sub, calling
// consume on every real (non-sentinel) message and discarding its result.
// It is used once a routine has started shutting down but still needs to
// unblock a publisher or transformer waiting on the other end of ch —
// spin_routine.hpp's flush, generalized to run one batch at a time so
// callers can re-check their own stop condition between batches.
func drainOne[T any](ch *channel.Channel[T], sub *channel.Subscription, consume func(T) error) {
	lo, hi, ok := ch.Await(sub, nil)
	if !ok {
		return
	}

	for seq := lo; seq <= hi; seq++ {
		if !ch.IsSentinel(seq) {
			_ = consume(ch.At(seq))
		}

		ch.Ack(sub, seq)
	}
}
