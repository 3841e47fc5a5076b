package network

import (
	"fmt"

	"github.com/robosdk/flow/cancel"
	"github.com/robosdk/flow/drivers"
	"github.com/robosdk/flow/errors"
	"github.com/robosdk/flow/rate"
	"github.com/robosdk/flow/registry"
)

// RoutineOption overrides a per-routine default otherwise inherited from
// the owning Network's config.Options at attach time — routines are built
// before the Network that will run them exists (a chain is assembled
// independently of any Network), so an override has to be a sentinel
// rather than a value resolved eagerly.
type RoutineOption func(*routineSettings)

type routineSettings struct {
	capacity     *int
	strideLength *int
	frequencyHz  *float64
}

// WithCapacity overrides the ring capacity of a channel this routine
// creates. Ignored if the channel already exists (the first routine to
// reach a given name owns its capacity, per registry.MakeIfAbsent).
func WithCapacity(n int) RoutineOption {
	return func(s *routineSettings) { s.capacity = &n }
}

// WithStrideLength overrides the maximum claim size per batch for this
// routine.
func WithStrideLength(n int) RoutineOption {
	return func(s *routineSettings) { s.strideLength = &n }
}

// WithFrequency overrides the publisher pacing rate, in Hz, for this
// routine. Only meaningful for publisher routines.
func WithFrequency(hz float64) RoutineOption {
	return func(s *routineSettings) { s.frequencyHz = &hz }
}

func newRoutineSettings(opts []RoutineOption) routineSettings {
	var s routineSettings
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (n *Network) resolveCapacity(s routineSettings) int {
	if s.capacity != nil {
		return *s.capacity
	}

	return n.cfg.MessageBufferSize
}

func (n *Network) resolveStrideLength(s routineSettings) int {
	if s.strideLength != nil {
		return *s.strideLength
	}

	return n.cfg.StrideLength
}

func (n *Network) resolveFrequencyHz(s routineSettings) float64 {
	if s.frequencyHz != nil {
		return *s.frequencyHz
	}

	return n.cfg.FrequencyHz
}

func errUnsupportedRoutine(item any) error {
	return errors.ErrInvalidRoutine.Clone().AddMeta("type", fmt.Sprintf("%T", item))
}

// publisherRoutine is the Routine produced by flow.Publisher / chain.Publish:
// a generic struct whose attach method is non-generic at the interface
// boundary but closes over T internally, the idiomatic Go substitute for
// network.push(publisher<T>)'s compile-time dispatch.
type publisherRoutine[T any] struct {
	name     string
	settings routineSettings
	fn       drivers.PublisherFunc[T]
}

func (r *publisherRoutine[T]) attach(n *Network) error {
	ch, err := registry.MakeIfAbsent[T](n.reg, r.name, n.resolveCapacity(r.settings))
	if err != nil {
		return err
	}

	src := cancel.New(n.groupCtx)
	pacer := rate.New(n.resolveFrequencyHz(r.settings))
	strideLength := n.resolveStrideLength(r.settings)

	n.group.Go(func() error {
		return drivers.SpinPublisher(src, ch, strideLength, pacer, r.fn, n.log)
	})

	return nil
}

// subscriberRoutine is the Routine produced by flow.Subscriber /
// chain.Subscribe. Its cancellation source is registered with the
// network's fan-out — a subscriber's cancellation is the only external
// input signal spec.md §5 names.
type subscriberRoutine[T any] struct {
	name     string
	settings routineSettings
	fn       drivers.SubscriberFunc[T]
}

func (r *subscriberRoutine[T]) attach(n *Network) error {
	ch, err := registry.MakeIfAbsent[T](n.reg, r.name, n.resolveCapacity(r.settings))
	if err != nil {
		return err
	}

	sub := ch.Subscribe()
	src := cancel.New(n.groupCtx)
	n.fanout.Add(src.Handle())

	n.group.Go(func() error {
		return drivers.SpinSubscriber(src, ch, sub, r.fn, n.log)
	})

	return nil
}

// transformerRoutine is the Routine produced by flow.Transformer /
// chain.Transform. It carries no cancellation source of its own: a
// transformer derives shutdown purely from the termination state of its
// two channels, exactly as original_source/include/flow/network.hpp's
// push(transformer) never registers a handle with the fan-out.
type transformerRoutine[A, B any] struct {
	nameIn, nameOut string
	settings        routineSettings
	fn              drivers.TransformerFunc[A, B]
}

func (r *transformerRoutine[A, B]) attach(n *Network) error {
	upstream, err := registry.MakeIfAbsent[A](n.reg, r.nameIn, n.resolveCapacity(r.settings))
	if err != nil {
		return err
	}

	downstream, err := registry.MakeIfAbsent[B](n.reg, r.nameOut, n.resolveCapacity(r.settings))
	if err != nil {
		return err
	}

	upstreamSub := upstream.Subscribe()
	strideLength := n.resolveStrideLength(r.settings)

	n.group.Go(func() error {
		return drivers.SpinTransformer(upstream, upstreamSub, downstream, strideLength, r.fn, n.log)
	})

	return nil
}

// spinnerRoutine is the Routine produced by flow.Spinner / chain.Spin. Like
// a subscriber, its cancellation is an external input, so it registers with
// the fan-out.
type spinnerRoutine struct {
	fn drivers.SpinnerFunc
}

func (r *spinnerRoutine) attach(n *Network) error {
	src := cancel.New(n.groupCtx)
	n.fanout.Add(src.Handle())

	n.group.Go(func() error {
		return drivers.SpinSpinner(src, r.fn, n.log)
	})

	return nil
}

// NewPublisher constructs a publisher Routine bound to channel name,
// publishing messages produced by fn.
func NewPublisher[T any](name string, fn drivers.PublisherFunc[T], opts ...RoutineOption) Routine {
	return &publisherRoutine[T]{name: name, settings: newRoutineSettings(opts), fn: fn}
}

// NewSubscriber constructs a subscriber Routine bound to channel name,
// consuming every message with fn.
func NewSubscriber[T any](name string, fn drivers.SubscriberFunc[T], opts ...RoutineOption) Routine {
	return &subscriberRoutine[T]{name: name, settings: newRoutineSettings(opts), fn: fn}
}

// NewTransformer constructs a transformer Routine reading from nameIn and
// publishing fn's result to nameOut.
func NewTransformer[A, B any](nameIn, nameOut string, fn drivers.TransformerFunc[A, B], opts ...RoutineOption) Routine {
	return &transformerRoutine[A, B]{nameIn: nameIn, nameOut: nameOut, settings: newRoutineSettings(opts), fn: fn}
}

// NewSpinner constructs a spinner Routine: a background task with no
// channel on either end.
func NewSpinner(fn drivers.SpinnerFunc) Routine {
	return &spinnerRoutine{fn: fn}
}
