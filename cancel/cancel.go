// Package cancel wraps cooperative cancellation for a single routine and
// fans it out across a network of routines. It is grounded on the
// context.Context/CancelFunc pair ezex-io-gopkg/pipeline's pipeline type
// uses for its own shutdown (ctx, cancel := context.WithCancel(parentCtx)),
// generalized here into the standalone handle/source split the spec calls
// for: a cheap-to-copy Handle that requests cancellation, and a Source that
// a driver polls.
package cancel

import "context"

// Source is the cancellation source owned by one routine's driver. Only the
// driver reads Done()/IsCancellationRequested(); external code only ever
// holds a Handle derived from it.
type Source struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a cancellation source as a child of parent.
func New(parent context.Context) *Source {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Source{ctx: ctx, cancel: cancel}
}

// Done returns a channel that is closed once cancellation has been
// requested, suitable for use in a select alongside channel suspension
// points.
func (s *Source) Done() <-chan struct{} {
	return s.ctx.Done()
}

// IsCancellationRequested reports whether cancellation has been requested,
// without blocking.
func (s *Source) IsCancellationRequested() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Handle returns a cheap-to-copy handle that external code can use to
// request cancellation of this source.
func (s *Source) Handle() Handle {
	return Handle{cancel: s.cancel}
}

// Handle is a non-owning, copy-safe reference to a cancellation source.
// Calling RequestCancellation multiple times, from multiple goroutines, has
// the same effect as calling it once — it is backed by context.CancelFunc,
// which the standard library documents as idempotent and concurrency-safe.
type Handle struct {
	cancel context.CancelFunc
}

// RequestCancellation requests cancellation. Safe to call more than once and
// from any goroutine.
func (h Handle) RequestCancellation() {
	if h.cancel != nil {
		h.cancel()
	}
}
