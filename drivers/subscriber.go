package drivers

import (
	"github.com/robosdk/flow/cancel"
	"github.com/robosdk/flow/channel"
	"github.com/robosdk/flow/logger"
)

// SpinSubscriber calls fn for every message published on ch until src
// requests cancellation. It then initializes ch's termination, drains
// whatever remains published to unblock any waiting publisher, and
// finalizes termination — mirroring spin_subscriber.
func SpinSubscriber[T any](src *cancel.Source, ch *channel.Channel[T], sub *channel.Subscription, fn SubscriberFunc[T], log logger.Logger) error {
	for !src.IsCancellationRequested() {
		lo, hi, ok := ch.Await(sub, src.Done())
		if !ok {
			break
		}

		for seq := lo; seq <= hi; seq++ {
			if ch.IsSentinel(seq) {
				ch.Ack(sub, seq)

				continue
			}

			if err := callSubscriber(fn, ch.At(seq)); err != nil {
				log.Error("subscriber callback failed", "channel", ch.Name(), "error", err)
				ch.Ack(sub, seq)
				ch.InitializeTermination()
				drainSubscriber(ch, sub, fn)
				ch.FinalizeTermination()

				return err
			}

			ch.Ack(sub, seq)
		}
	}

	ch.InitializeTermination()
	drainSubscriber(ch, sub, fn)
	ch.FinalizeTermination()

	return nil
}

func drainSubscriber[T any](ch *channel.Channel[T], sub *channel.Subscription, fn SubscriberFunc[T]) {
	for ch.State() < channel.PublisherReceived && ch.PublishersWaiting() > 0 {
		drainOne(ch, sub, func(msg T) error { return callSubscriber(fn, msg) })
	}
}
