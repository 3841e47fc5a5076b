package flow

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robosdk/flow/chain"
)

func TestEndToEndPublisherSubscriberViaPublicAPI(t *testing.T) {
	var produced atomic.Int32
	pub := Publisher[int](func() (int, error) {
		return int(produced.Add(1)), nil
	}, "numbers", WithStrideLength(4))

	var mu sync.Mutex
	var got []int
	sub := Subscriber[int](func(msg int) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()

		return nil
	}, "numbers")

	n, err := Network(pub, sub)
	require.NoError(t, err)

	n.CancelAfter(50 * time.Millisecond)

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
	require.NotEmpty(t, got)
	for i, v := range got {
		assert.Equal(t, i+1, v)
	}
}

func TestEndToEndChainViaPublicAPI(t *testing.T) {
	var produced atomic.Int32
	opened := chain.Publish[int](Chain(), func() (int, error) {
		return int(produced.Add(1)), nil
	}, chain.WithStrideLength(4))

	transformed := chain.Transform[int, int](opened, func(v int) (int, error) {
		return v * 2, nil
	}, chain.WithStrideLength(4))

	var mu sync.Mutex
	var got []int
	closed := chain.Subscribe[int](transformed, func(msg int) error {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()

		return nil
	})

	n, err := Network(closed)
	require.NoError(t, err)

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
}

func TestSpinnerViaPublicAPI(t *testing.T) {
	var calls atomic.Int32
	spinner := Spinner(func() error {
		calls.Add(1)

		return nil
	})

	n, err := Network(spinner)
	require.NoError(t, err)

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
