// Package drivers implements the goroutine bodies that drive user-supplied
// publisher, subscriber, transformer, and spinner callbacks against
// channels until cancellation or channel termination, grounded on
// original_source/include/flow/detail/spin_routine.hpp's spin_publisher,
// spin_subscriber, spin_transformer, spin_spinner, and flush. The C++
// original suspends each user call inside its own coroutine so a panic
// (there: an uncaught C++ exception) cannot unwind past the driver loop;
// the Go translation recovers from a panic around every user call instead,
// since an unrecovered goroutine panic takes the whole process down.
package drivers

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/robosdk/flow/errors"
)

// PublisherFunc produces the next message for a channel. Returning a
// non-nil error aborts the network.
type PublisherFunc[T any] func() (T, error)

// SubscriberFunc consumes one message from a channel. Returning a non-nil
// error aborts the network.
type SubscriberFunc[T any] func(T) error

// TransformerFunc converts a message from an upstream channel's type into a
// message for a downstream channel. Returning a non-nil error aborts the
// network.
type TransformerFunc[A, B any] func(A) (B, error)

// SpinnerFunc is called repeatedly with no channel interaction until its
// routine is cancelled. Returning a non-nil error aborts the network.
type SpinnerFunc func() error

func captureStackTrace(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])

	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}

		if !more {
			break
		}
	}

	return b.String()
}

func recoverToError(recovered any) *errors.Error {
	return errors.ErrUserCallback.Clone().
		AddMeta("panic", fmt.Sprint(recovered), "stack", captureStackTrace(4))
}

func callPublisher[T any](fn PublisherFunc[T]) (msg T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r)
		}
	}()

	return fn()
}

func callSubscriber[T any](fn SubscriberFunc[T], msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r)
		}
	}()

	return fn(msg)
}

func callTransformer[A, B any](fn TransformerFunc[A, B], in A) (out B, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r)
		}
	}()

	return fn(in)
}

func callSpinner(fn SpinnerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r)
		}
	}()

	return fn()
}
