package drivers

import (
	"github.com/robosdk/flow/channel"
	"github.com/robosdk/flow/logger"
)

// SpinTransformer reads messages from upstream via upstreamSub, converts
// each with fn, and republishes the result on downstream in batches of up
// to strideLength, until either channel begins terminating. It then
// confirms downstream's termination (publishing one batch of up to
// strideLength sentinels on it unless it has already reached
// SubscriberFinalized), propagates termination upstream, and
// drains upstream to unblock anything still waiting there — mirroring
// spin_transformer.
func SpinTransformer[A, B any](
	upstream *channel.Channel[A], upstreamSub *channel.Subscription,
	downstream *channel.Channel[B], strideLength int,
	fn TransformerFunc[A, B],
	log logger.Logger,
) error {
	var (
		callErr                    error
		batchLo, batchHi, batchNxt int64
		haveBatch                  bool
	)

	if lo, hi, ok := downstream.RequestPermission(strideLength, nil); ok {
		batchLo, batchHi, batchNxt = lo, hi, lo
		haveBatch = true
	}

outer:
	for haveBatch && upstream.State() == channel.Uninitialized && downstream.State() == channel.Uninitialized {
		uLo, uHi, ok := upstream.Await(upstreamSub, nil)
		if !ok {
			break
		}

		for seq := uLo; seq <= uHi; seq++ {
			if downstream.State() != channel.Uninitialized {
				upstream.Ack(upstreamSub, seq)

				break outer
			}

			if upstream.IsSentinel(seq) {
				upstream.Ack(upstreamSub, seq)

				continue
			}

			out, err := callTransformer(fn, upstream.At(seq))
			upstream.Ack(upstreamSub, seq)

			if err != nil {
				log.Error("transformer callback failed", "from", upstream.Name(), "to", downstream.Name(), "error", err)
				callErr = err

				break outer
			}

			downstream.StagePublish(batchNxt, out)
			batchNxt++

			if batchNxt > batchHi {
				downstream.Publish(batchLo, batchHi)

				if upstream.State() != channel.Uninitialized || downstream.State() != channel.Uninitialized {
					haveBatch = false

					break outer
				}

				newLo, newHi, ok := downstream.RequestPermission(strideLength, nil)
				if !ok {
					haveBatch = false

					break outer
				}

				batchLo, batchHi, batchNxt = newLo, newHi, newLo
			}
		}
	}

	if haveBatch && batchNxt <= batchHi {
		for fill := batchNxt; fill <= batchHi; fill++ {
			downstream.StageSentinel(fill)
		}

		downstream.Publish(batchLo, batchHi)
	}

	downstream.ConfirmTermination()

	if downstream.State() < channel.SubscriberFinalized {
		lo, hi := downstream.ClaimForDrain(strideLength)
		for seq := lo; seq <= hi; seq++ {
			downstream.StageSentinel(seq)
		}

		downstream.Publish(lo, hi)
	}

	upstream.InitializeTermination()

	for upstream.State() < channel.PublisherReceived && upstream.PublishersWaiting() > 0 {
		drainOne(upstream, upstreamSub, func(a A) error {
			_, err := callTransformer(fn, a)

			return err
		})
	}

	upstream.FinalizeTermination()

	return callErr
}
