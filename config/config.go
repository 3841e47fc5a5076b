// Package config carries the four recognized configuration options a
// network and its chains resolve defaults from: message buffer size, max
// registry resources, stride length, and publisher frequency. It follows
// the functional-options shape ezex-io-gopkg uses throughout
// (pipeline.WithBufferSize, cache.WithCleanUpInterval): a zero-value
// Options is never handed to a caller directly, New always starts from the
// package defaults and layers overrides on top.
package config

// Defaults mirror spec.md §6's recognized configuration options.
const (
	DefaultMessageBufferSize = 1024
	DefaultMaxResources      = 1024
	DefaultStrideLength      = 16
)

// Options holds the resolved configuration for a network. FrequencyHz of 0
// means unbounded/best-effort, the spec's default for a publisher chain
// with no explicit rate.
type Options struct {
	MessageBufferSize int
	MaxResources      int
	StrideLength      int
	FrequencyHz       float64
}

// Option mutates an Options being built by New.
type Option func(*Options)

// WithMessageBufferSize overrides the ring capacity every channel created
// under this network uses unless a routine requests its own. Must be a
// power of two; channel.New enforces this.
func WithMessageBufferSize(n int) Option {
	return func(o *Options) { o.MessageBufferSize = n }
}

// WithMaxResources overrides the registry's maximum distinct channel count.
// 0 means unbounded.
func WithMaxResources(n int) Option {
	return func(o *Options) { o.MaxResources = n }
}

// WithStrideLength overrides the maximum range size per publisher/
// transformer claim.
func WithStrideLength(n int) Option {
	return func(o *Options) { o.StrideLength = n }
}

// WithFrequency overrides the default publisher rate in Hz. 0 means
// unbounded.
func WithFrequency(hz float64) Option {
	return func(o *Options) { o.FrequencyHz = hz }
}

// New resolves an Options, starting from the package defaults and applying
// opts in order.
func New(opts ...Option) Options {
	o := Options{
		MessageBufferSize: DefaultMessageBufferSize,
		MaxResources:      DefaultMaxResources,
		StrideLength:      DefaultStrideLength,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
