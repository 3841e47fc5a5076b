// Package registry implements the channel registry spec.md §4.7 describes:
// a shared, name-keyed store of lazily created channels so that two chain
// segments referring to the same channel name end up sharing one
// channel.Channel instance, grounded on the lazy-create-on-miss shape of
// ezex-io-gopkg/cache's BasicCache. Unlike BasicCache, entries here are
// heterogeneous in message type, so the registry itself stores `any` and
// exposes package-level generic functions that perform the type-checked
// downcast — Go does not allow a generic method on a non-generic receiver,
// so the struct can't be generic the way BasicCache[K, V] is.
package registry

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/robosdk/flow/channel"
	"github.com/robosdk/flow/errors"
	"github.com/robosdk/flow/logger"
)

type entry struct {
	value any
	typ   reflect.Type
}

// Registry is a name-keyed store of channels, bounded by an optional
// maximum resource count.
type Registry struct {
	mu           sync.Mutex
	entries      map[string]entry
	maxResources int
	log          logger.Logger
}

// New creates a Registry. maxResources of 0 means unbounded.
func New(maxResources int) *Registry {
	return &Registry{
		entries:      make(map[string]entry),
		maxResources: maxResources,
		log:          logger.Nop(),
	}
}

// SetLogger replaces the registry's logger, used by network.New to hand the
// registry the network's configured logger.
func (r *Registry) SetLogger(log logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = log.With("component", "registry")
}

// MakeIfAbsent returns the existing channel named name, or creates one with
// the given capacity if none exists yet. It fails with
// errors.ErrRegistryTypeMismatch if name is already bound to a channel of a
// different message type, and with errors.ErrRegistryOverflow if creating a
// new entry would exceed the registry's configured maximum.
func MakeIfAbsent[T any](r *Registry, name string, capacity int) (*channel.Channel[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := reflect.TypeFor[T]()

	if e, ok := r.entries[name]; ok {
		if e.typ != want {
			return nil, errors.ErrRegistryTypeMismatch.Clone().
				AddMeta("name", name, "existing_type", e.typ.String(), "requested_type", want.String())
		}

		return e.value.(*channel.Channel[T]), nil
	}

	if r.maxResources > 0 && len(r.entries) >= r.maxResources {
		return nil, errors.ErrRegistryOverflow.Clone().
			AddMeta("name", name, "max_resources", strconv.Itoa(r.maxResources))
	}

	ch := channel.New[T](name, capacity)
	ch.SetLogger(r.log)
	r.entries[name] = entry{value: ch, typ: want}
	r.log.Debug("channel created", "name", name, "capacity", capacity, "type", want.String())

	return ch, nil
}

// Get returns the channel named name if it exists and matches T.
func Get[T any](r *Registry, name string) (*channel.Channel[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	ch, ok := e.value.(*channel.Channel[T])

	return ch, ok
}

// Contains reports whether any channel is registered under name, regardless
// of its message type.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[name]

	return ok
}

// Len reports the number of distinct channels currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
