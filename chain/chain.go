// Package chain implements spec.md §4.7's chain DSL: a fluent pipeline
// builder whose legal transitions are enforced at compile time by phantom
// state types rather than a runtime check. It mirrors
// original_source/include/flow/chain.hpp's open_chain/init_chain/
// closed_chain partial specializations, translated from C++ concept-
// constrained template specialization into Go's only equivalent: distinct
// phantom type arguments with transition functions defined only for the
// states that may legally accept them.
package chain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/robosdk/flow/drivers"
	"github.com/robosdk/flow/network"
)

// InitChain, OpenChain, and ClosedChain are phantom states: they carry no
// data and are used only as Chain's type argument, so that e.g.
// chain.Subscribe (which only accepts Chain[OpenChain]) is a compile error
// on a Chain[InitChain] or Chain[ClosedChain] value.
type (
	InitChain   struct{}
	OpenChain   struct{}
	ClosedChain struct{}
)

// Chain accumulates routines built by Publish/Transform/Subscribe/Spin.
// Each step is immutable: every transition function takes a Chain by value
// and returns a new one in a (possibly different) state, so a half-built
// chain can never be reused inconsistently across branches.
type Chain[S any] struct {
	frequencyHz float64
	lastChannel string
	index       int
	routines    []network.Routine
}

// New starts an init chain. If freq is given, its first element sets the
// default publish rate every publisher appended to this chain inherits
// unless it requests its own via WithFrequency — freq is a period (e.g.
// 100*time.Millisecond), converted to the Hz rate.Pacer expects.
func New(freq ...time.Duration) Chain[InitChain] {
	var hz float64
	if len(freq) > 0 && freq[0] > 0 {
		hz = float64(time.Second) / float64(freq[0])
	}

	return Chain[InitChain]{frequencyHz: hz}
}

// Routines returns the chain's accumulated routines. Only meaningful once
// the chain has reached ClosedChain, but exposed on any state so
// network.Network.Push's Routines() accessor check works uniformly; a
// network never calls it except through that duck-typed interface check.
func (c Chain[S]) Routines() []network.Routine {
	return c.routines
}

func (c Chain[S]) anonymousName() string {
	return "chain-" + strconv.Itoa(c.index) + "-" + uuid.NewString()
}

// settings accumulates the per-step overrides an Option may set.
type settings struct {
	name         string
	capacity     *int
	strideLength *int
	frequencyHz  *float64
}

// Option overrides a chain step's channel name or per-routine defaults.
type Option func(*settings)

// WithChannelName binds this step to an explicit channel name instead of
// the chain's auto-assigned or implicitly-wired one — the DSL's
// publish_to()/subscribe_to() escape hatch spec.md §4.7 describes.
func WithChannelName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithCapacity overrides the ring capacity of the channel this step
// creates.
func WithCapacity(n int) Option {
	return func(s *settings) { s.capacity = &n }
}

// WithStrideLength overrides the maximum claim size per batch for this
// step.
func WithStrideLength(n int) Option {
	return func(s *settings) { s.strideLength = &n }
}

// WithFrequency overrides the chain-wide publish rate for this one
// publisher step.
func WithFrequency(hz float64) Option {
	return func(s *settings) { s.frequencyHz = &hz }
}

func resolve(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (s settings) routineOpts(chainFrequencyHz float64) []network.RoutineOption {
	var opts []network.RoutineOption
	if s.capacity != nil {
		opts = append(opts, network.WithCapacity(*s.capacity))
	}

	if s.strideLength != nil {
		opts = append(opts, network.WithStrideLength(*s.strideLength))
	}

	switch {
	case s.frequencyHz != nil:
		opts = append(opts, network.WithFrequency(*s.frequencyHz))
	case chainFrequencyHz > 0:
		opts = append(opts, network.WithFrequency(chainFrequencyHz))
	}

	return opts
}

// Publish appends a publisher to an init chain, the only routine (besides
// Spin) an init chain may legally accept — init | publisher -> open.
func Publish[T any](c Chain[InitChain], fn drivers.PublisherFunc[T], opts ...Option) Chain[OpenChain] {
	s := resolve(opts)

	name := s.name
	if name == "" {
		name = c.anonymousName()
	}

	routine := network.NewPublisher[T](name, fn, s.routineOpts(c.frequencyHz)...)

	return Chain[OpenChain]{
		frequencyHz: c.frequencyHz,
		lastChannel: name,
		index:       c.index + 1,
		routines:    append(append([]network.Routine{}, c.routines...), routine),
	}
}

// Transform appends a transformer to an open chain — open | transformer ->
// open. Its input channel is always the previous stage's output;
// WithChannelName names its output channel, which is otherwise
// auto-assigned, and that output becomes the next stage's implicit input.
func Transform[A, B any](c Chain[OpenChain], fn drivers.TransformerFunc[A, B], opts ...Option) Chain[OpenChain] {
	s := resolve(opts)

	in := c.lastChannel

	out := s.name
	if out == "" {
		out = c.anonymousName()
	}

	routine := network.NewTransformer[A, B](in, out, fn, s.routineOpts(c.frequencyHz)...)

	return Chain[OpenChain]{
		frequencyHz: c.frequencyHz,
		lastChannel: out,
		index:       c.index + 1,
		routines:    append(append([]network.Routine{}, c.routines...), routine),
	}
}

// Subscribe appends a subscriber to an open chain and closes it — open |
// subscriber -> closed. Its input channel is implicitly the previous
// stage's output unless WithChannelName overrides it.
func Subscribe[T any](c Chain[OpenChain], fn drivers.SubscriberFunc[T], opts ...Option) Chain[ClosedChain] {
	s := resolve(opts)

	name := s.name
	if name == "" {
		name = c.lastChannel
	}

	routine := network.NewSubscriber[T](name, fn, s.routineOpts(c.frequencyHz)...)

	return Chain[ClosedChain]{
		frequencyHz: c.frequencyHz,
		routines:    append(append([]network.Routine{}, c.routines...), routine),
	}
}

// Spin appends a spinner to an init chain and closes it directly — init |
// spinner -> closed. A spinner chain never touches a channel, so it never
// participates in the implicit-wiring convention.
func Spin(c Chain[InitChain], fn drivers.SpinnerFunc) Chain[ClosedChain] {
	routine := network.NewSpinner(fn)

	return Chain[ClosedChain]{
		frequencyHz: c.frequencyHz,
		routines:    append(append([]network.Routine{}, c.routines...), routine),
	}
}
