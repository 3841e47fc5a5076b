package chain

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robosdk/flow/network"
)

func TestPublishTransformSubscribeWiresImplicitChannels(t *testing.T) {
	var produced atomic.Int32
	c := New()
	open := Publish[int](c, func() (int, error) {
		return int(produced.Add(1)), nil
	}, WithStrideLength(2))

	opened := Transform[int, int](open, func(v int) (int, error) {
		return v * 10, nil
	}, WithStrideLength(2))

	var mu sync.Mutex
	var got []int
	closed := Subscribe[int](opened, func(msg int) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()

		return nil
	})

	require.Len(t, closed.Routines(), 3)

	n := network.New(context.Background())
	require.NoError(t, n.Push(closed))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(got) >= 5
	}, 2*time.Second, 5*time.Millisecond)

	n.Handle().RequestCancellation()

	done := make(chan error, 1)
	go func() { done <- n.Spin(nil) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, v := range got {
		assert.Zero(t, v%10)
	}
}

func TestExplicitChannelNameOverridesImplicitWiring(t *testing.T) {
	open := Publish[int](New(), func() (int, error) { return 1, nil }, WithChannelName("explicit-in"))
	closed := Subscribe[int](open, func(msg int) error { return nil }, WithChannelName("explicit-out"))

	require.Len(t, closed.Routines(), 2)
}

func TestSpinClosesAnInitChainDirectly(t *testing.T) {
	var calls atomic.Int32
	closed := Spin(New(), func() error {
		calls.Add(1)

		return nil
	})

	require.Len(t, closed.Routines(), 1)

	n := network.New(context.Background())
	require.NoError(t, n.Push(closed))

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, 5*time.Millisecond)

	n.Handle().RequestCancellation()

	done := make(chan error, 1)
	go func() { done <- n.Spin(nil) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down")
	}
}

func TestTwoChainsBridgeOnASharedChannelName(t *testing.T) {
	producerChain := Publish[int](New(), func() (int, error) { return 7, nil }, WithChannelName("shared"), WithStrideLength(1))

	var mu sync.Mutex
	var got []int
	consumerChain := Subscribe[int](openFromShared(), func(msg int) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()

		return nil
	}, WithChannelName("shared"))

	n := network.New(context.Background())
	require.NoError(t, n.Push(producerChain, consumerChain))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(got) > 0
	}, 2*time.Second, 5*time.Millisecond)

	n.Handle().RequestCancellation()

	done := make(chan error, 1)
	go func() { done <- n.Spin(nil) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down")
	}
}

// openFromShared constructs a bare open chain with no routines yet, used
// only so Subscribe has an OpenChain to close — a second, disjoint chain
// bridged to the first purely by a shared explicit channel name.
func openFromShared() Chain[OpenChain] {
	return Chain[OpenChain]{}
}
