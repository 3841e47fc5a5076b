// Package network implements spec.md §4.6: it owns the channel registry,
// the driver goroutines, and a fan-out cancellation handle, and joins every
// driver's completion on Spin. It is grounded on the goroutine-group and
// context-propagation shape of ezex-io-gopkg/pipeline's pipeline type, with
// errgroup.Group (golang.org/x/sync/errgroup) standing in for the teacher's
// scheduler.Scheduler as the ambient concurrency primitive — errgroup
// already gives us "first error cancels the shared context, Wait joins
// everything", which is exactly spin()'s contract.
package network

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robosdk/flow/cancel"
	"github.com/robosdk/flow/config"
	"github.com/robosdk/flow/logger"
	"github.com/robosdk/flow/registry"
)

// Routine is a pushed, type-erased unit of work. Concrete implementations
// are generic structs (publisherRoutine[T], transformerRoutine[A, B], ...)
// whose attach method closes over their own message type — the Go
// substitute for the C++ original's if-constexpr dispatch on routine kind,
// since Go has no compile-time branch on a type parameter.
type Routine interface {
	attach(n *Network) error
}

// Network owns every channel a pushed routine touches, drives each routine
// as its own goroutine, and exposes a single fan-out cancellation handle
// reaching every subscriber and spinner.
type Network struct {
	cfg    config.Options
	reg    *registry.Registry
	log    logger.Logger
	fanout *cancel.FanOut

	groupCtx context.Context
	group    *errgroup.Group
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithConfig sets the resolved configuration new routines fall back to
// when they don't request their own capacity, stride length, or frequency.
func WithConfig(cfg config.Options) Option {
	return func(n *Network) { n.cfg = cfg }
}

// WithLogger attaches a logger every driver and the registry log through.
func WithLogger(log logger.Logger) Option {
	return func(n *Network) { n.log = log }
}

// WithWorkerLimit bounds the number of driver goroutines allowed to run
// concurrently, via errgroup.Group.SetLimit. The default is unlimited — one
// goroutine per pushed routine, which is what spec.md §5 requires ("each
// driver is one task").
func WithWorkerLimit(n int) Option {
	return func(network *Network) { network.group.SetLimit(n) }
}

// New creates a Network bound to ctx: cancelling ctx, or any driver
// returning an error, cancels every other driver's derived context.
func New(ctx context.Context, opts ...Option) *Network {
	if ctx == nil {
		ctx = context.Background()
	}

	group, groupCtx := errgroup.WithContext(ctx)

	n := &Network{
		cfg:      config.New(),
		reg:      registry.New(0),
		log:      logger.Nop(),
		fanout:   cancel.NewFanOut(),
		groupCtx: groupCtx,
		group:    group,
	}

	for _, opt := range opts {
		opt(n)
	}

	n.reg = registry.New(n.cfg.MaxResources)
	n.reg.SetLogger(n.log)

	return n
}

// Push attaches each item to the network. Each item must be a Routine
// (constructed by flow.Publisher/Subscriber/Transformer/Spinner or the
// chain package's builders), a []Routine, or a value exposing
// Routines() []Routine such as a chain.Chain — the chain package supplies
// that accessor so this package never needs to import chain (which itself
// depends on network, and Go forbids import cycles). Push does not check
// which state a chain is in.
func (n *Network) Push(items ...any) error {
	for _, item := range items {
		switch v := item.(type) {
		case Routine:
			if err := v.attach(n); err != nil {
				return err
			}
		case []Routine:
			for _, r := range v {
				if err := r.attach(n); err != nil {
					return err
				}
			}
		default:
			if rr, ok := item.(interface{ Routines() []Routine }); ok {
				for _, r := range rr.Routines() {
					if err := r.attach(n); err != nil {
						return err
					}
				}

				continue
			}

			return errUnsupportedRoutine(item)
		}
	}

	return nil
}

// CancelAfter schedules a timer that requests cancellation of every
// subscriber and spinner after d, grounded on
// ezex-io-gopkg/scheduler.After(ctx, d).Do(callback)'s one-shot timer
// shape. The timer task itself joins Spin's wait group, exiting cleanly
// when it fires or when the network's shared context is cancelled (a
// driver error, or cancellation of the context passed to New). A
// cancellation requested through Handle does not stop the timer, so Spin
// then also waits until d has elapsed.
func (n *Network) CancelAfter(d time.Duration) {
	n.group.Go(func() error {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-n.groupCtx.Done():
		case <-timer.C:
			n.fanout.RequestCancellation()
		}

		return nil
	})
}

// Handle returns the network's fan-out cancellation handle: calling
// RequestCancellation on it cancels every subscriber and spinner pushed by
// the time of that call (including ones pushed after Handle was obtained;
// ones pushed after the call are not cancelled), cascading through the channel
// termination protocol to every publisher and transformer.
func (n *Network) Handle() cancel.Handle {
	return n.fanout.Handle()
}

// Spin blocks until every driver goroutine has returned, either because
// cancellation propagated to completion or because a driver returned an
// error — the first such error is returned, matching spin()'s "await all
// driver tasks, no task is killed, all exit cleanly" contract.
func (n *Network) Spin(ctx context.Context) error {
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				n.fanout.RequestCancellation()
			case <-n.groupCtx.Done():
			}
		}()
	}

	return n.group.Wait()
}
