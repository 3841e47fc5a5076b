package drivers

import (
	"github.com/robosdk/flow/cancel"
	"github.com/robosdk/flow/logger"
)

// SpinSpinner calls fn repeatedly until src requests cancellation,
// mirroring spin_spinner — a routine with no channel on either end, used
// for background work that has nothing to publish or consume.
func SpinSpinner(src *cancel.Source, fn SpinnerFunc, log logger.Logger) error {
	for !src.IsCancellationRequested() {
		if err := callSpinner(fn); err != nil {
			log.Error("spinner callback failed", "error", err)

			return err
		}
	}

	return nil
}
