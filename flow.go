// Package flow is a library for composing concurrent dataflow networks:
// publishers, transformers, subscribers, and background spinners connected
// by bounded ring-buffered typed channels, coordinated with
// Disruptor-style sequencers and barriers. This file is the package's
// public surface, re-exporting the routine constructors, the chain DSL
// entry point, and the network constructor spec.md §6 names as
// flow.Publisher/Subscriber/Transformer/Spinner/Chain/Network. Building on
// a chain returned by Chain uses package chain's Publish/Transform/
// Subscribe/Spin, and network.Option values (WithConfig, WithLogger, ...)
// come from package network; channel, sequence, registry, rate, drivers,
// and cancel are implementation detail a caller never needs to import
// directly.
package flow

import (
	"context"
	"time"

	"github.com/robosdk/flow/chain"
	"github.com/robosdk/flow/drivers"
	"github.com/robosdk/flow/network"
)

// Routine is a pushed, type-erased unit of work produced by Publisher,
// Subscriber, Transformer, or Spinner (or by the chain DSL), and consumed
// by Network.
type Routine = network.Routine

// RoutineOption overrides a routine's per-call defaults (channel capacity,
// stride length, publish frequency) otherwise inherited from the network
// it is eventually pushed to.
type RoutineOption = network.RoutineOption

var (
	// WithCapacity overrides the ring capacity of the channel a routine
	// creates.
	WithCapacity = network.WithCapacity
	// WithStrideLength overrides the maximum claim size per batch.
	WithStrideLength = network.WithStrideLength
	// WithFrequency overrides the publish rate, in Hz, for a publisher.
	WithFrequency = network.WithFrequency
)

// Publisher constructs a routine that calls fn repeatedly, publishing each
// result to the channel named name. fn's error return is the realization
// of spec.md §7's UserCallbackException: a returned error aborts the
// routine exactly as a panic would, just without the stack-unwinding cost.
func Publisher[T any](fn func() (T, error), name string, opts ...RoutineOption) Routine {
	return network.NewPublisher[T](name, drivers.PublisherFunc[T](fn), opts...)
}

// Subscriber constructs a routine that calls fn for every message
// published on the channel named name, until cancellation.
func Subscriber[T any](fn func(T) error, name string, opts ...RoutineOption) Routine {
	return network.NewSubscriber[T](name, drivers.SubscriberFunc[T](fn), opts...)
}

// Transformer constructs a routine that reads from the channel named
// nameIn, converts each message with fn, and republishes the result to the
// channel named nameOut.
func Transformer[A, B any](fn func(A) (B, error), nameIn, nameOut string, opts ...RoutineOption) Routine {
	return network.NewTransformer[A, B](nameIn, nameOut, drivers.TransformerFunc[A, B](fn), opts...)
}

// Spinner constructs a background routine with no channel on either end,
// calling fn repeatedly until cancellation.
func Spinner(fn func() error) Routine {
	return network.NewSpinner(drivers.SpinnerFunc(fn))
}

// Chain starts an init chain DSL builder — see package chain. If freq is
// given, its first element sets the default publish rate for any
// publisher step appended to this chain.
func Chain(freq ...time.Duration) chain.Chain[chain.InitChain] {
	return chain.New(freq...)
}

// Network accepts any mixture of routines (from Publisher/Subscriber/
// Transformer/Spinner), closed chains (from the chain DSL), and
// network.Option values, and returns a Network with every item attached.
// Channel type mismatches and registry overflow surface as a returned
// error rather than a panic; a channel capacity that is not a power of two
// panics when the channel is created.
func Network(items ...any) (*network.Network, error) {
	var opts []network.Option
	var routines []any

	for _, item := range items {
		if opt, ok := item.(network.Option); ok {
			opts = append(opts, opt)

			continue
		}

		routines = append(routines, item)
	}

	n := network.New(context.Background(), opts...)
	if err := n.Push(routines...); err != nil {
		return nil, err
	}

	return n, nil
}
