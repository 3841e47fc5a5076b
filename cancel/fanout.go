package cancel

import "sync"

// FanOut is a single object whose RequestCancellation call triggers every
// constituent cancellable it has collected — the network's fan-out
// cancellation handle from spec.md §4.6. Only subscriber and spinner
// routines register with it; publishers and transformers derive their
// shutdown from channel termination state instead (spec.md §5,
// "Cancellation").
type FanOut struct {
	mu      sync.Mutex
	handles []Handle
}

// NewFanOut creates an empty FanOut with no registered handles.
func NewFanOut() *FanOut {
	return &FanOut{}
}

// Handle returns a cheap-to-copy handle whose RequestCancellation fans out
// to every handle currently registered (and, transitively, any registered
// later) — the network-wide handle spec.md §4.6 and §6 expose from
// (*network.Network).Handle().
func (f *FanOut) Handle() Handle {
	return Handle{cancel: f.RequestCancellation}
}

// Add registers a handle to be cancelled on the next RequestCancellation.
func (f *FanOut) Add(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handles = append(f.handles, h)
}

// RequestCancellation requests cancellation on every registered handle.
// Idempotent: calling it repeatedly re-requests cancellation on handles that
// are already cancelled, which is a no-op for each of them.
func (f *FanOut) RequestCancellation() {
	f.mu.Lock()
	handles := make([]Handle, len(f.handles))
	copy(handles, f.handles)
	f.mu.Unlock()

	for _, h := range handles {
		h.RequestCancellation()
	}
}
