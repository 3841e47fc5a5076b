package drivers

import (
	"runtime"
	"time"

	"github.com/robosdk/flow/cancel"
	"github.com/robosdk/flow/channel"
	"github.com/robosdk/flow/logger"
	"github.com/robosdk/flow/rate"
)

// drainGracePeriod gives a subscriber a brief window to notice a pending
// shutdown before the publisher starts flushing it with sentinels,
// mirroring the short sleep in spin_publisher.
const drainGracePeriod = 10 * time.Millisecond

// SpinPublisher calls fn until src requests cancellation or ch begins
// terminating from the subscriber side, staging and publishing a batch of
// up to strideLength messages per iteration, paced by pacer between
// batches. Once stopped it confirms ch's termination and keeps publishing
// sentinel batches until no subscriber is left waiting on it.
func SpinPublisher[T any](src *cancel.Source, ch *channel.Channel[T], strideLength int, pacer *rate.Pacer, fn PublisherFunc[T], log logger.Logger) error {
	for !src.IsCancellationRequested() && ch.State() == channel.Uninitialized {
		lo, hi, ok := ch.RequestPermission(strideLength, src.Done())
		if !ok {
			break
		}

		var batchErr error
		for seq := lo; seq <= hi; seq++ {
			msg, err := callPublisher(fn)
			if err != nil {
				batchErr = err
				for fill := seq; fill <= hi; fill++ {
					ch.StageSentinel(fill)
				}

				break
			}

			ch.StagePublish(seq, msg)
		}

		ch.Publish(lo, hi)

		if batchErr != nil {
			log.Error("publisher callback failed", "channel", ch.Name(), "error", batchErr)
			ch.ConfirmTermination()
			drainPublisherSentinels(ch, strideLength)

			return batchErr
		}

		for !src.IsCancellationRequested() && ch.State() == channel.Uninitialized && !pacer.IsReady() {
			runtime.Gosched()
		}

		pacer.Reset()
	}

	ch.ConfirmTermination()
	time.Sleep(drainGracePeriod)
	drainPublisherSentinels(ch, strideLength)

	return nil
}

func drainPublisherSentinels[T any](ch *channel.Channel[T], strideLength int) {
	for ch.SubscribersWaiting() > 0 {
		lo, hi := ch.ClaimForDrain(strideLength)
		for seq := lo; seq <= hi; seq++ {
			ch.StageSentinel(seq)
		}

		ch.Publish(lo, hi)
	}
}
