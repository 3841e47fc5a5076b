package network

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robosdk/flow/config"
	"github.com/robosdk/flow/testsuite"
)

// S1: a single publisher/subscriber pair delivers every message exactly
// once, in order, then shuts down cleanly when the subscriber cancels.
func TestSinglePublisherSubscriberDeliversInOrder(t *testing.T) {
	n := New(context.Background(), WithConfig(config.New(config.WithMessageBufferSize(8))))

	var produced atomic.Int32
	pub := NewPublisher[int]("numbers", func() (int, error) {
		v := produced.Add(1)

		return int(v), nil
	}, WithStrideLength(2))

	var mu sync.Mutex
	var got []int
	sub := NewSubscriber[int]("numbers", func(msg int) error {
		mu.Lock()
		defer mu.Unlock()

		got = append(got, msg)
		if len(got) >= 20 {
			n.Handle().RequestCancellation()
		}

		return nil
	})

	require.NoError(t, n.Push(pub, sub))

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
	require.GreaterOrEqual(t, len(got), 20)
	for i, v := range got[:20] {
		assert.Equal(t, i+1, v)
	}
}

// S2: a transformer stage doubles every value flowing through it.
func TestPublisherTransformerSubscriberChain(t *testing.T) {
	n := New(context.Background())

	var produced atomic.Int32
	pub := NewPublisher[int]("in", func() (int, error) {
		return int(produced.Add(1)), nil
	}, WithStrideLength(2))

	xform := NewTransformer[int, int]("in", "out", func(v int) (int, error) {
		return v * 2, nil
	}, WithStrideLength(2))

	var mu sync.Mutex
	var got []int
	sub := NewSubscriber[int]("out", func(msg int) error {
		mu.Lock()
		defer mu.Unlock()

		got = append(got, msg)
		if len(got) >= 10 {
			n.Handle().RequestCancellation()
		}

		return nil
	})

	require.NoError(t, n.Push(pub, xform, sub))

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
	require.GreaterOrEqual(t, len(got), 10)
	for i, v := range got[:10] {
		assert.Equal(t, (i+1)*2, v)
	}
}

// S3: a fan-out of multiple subscribers on the same channel each observe
// every published message.
func TestMultipleSubscribersEachObserveEveryMessage(t *testing.T) {
	n := New(context.Background())

	var produced atomic.Int32
	pub := NewPublisher[int]("broadcast", func() (int, error) {
		return int(produced.Add(1)), nil
	}, WithStrideLength(1))

	var mu sync.Mutex
	countA, countB := 0, 0
	subA := NewSubscriber[int]("broadcast", func(msg int) error {
		mu.Lock()
		countA++
		mu.Unlock()

		return nil
	})
	subB := NewSubscriber[int]("broadcast", func(msg int) error {
		mu.Lock()
		countB++
		mu.Unlock()

		return nil
	})

	require.NoError(t, n.Push(pub, subA, subB))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return countA >= 10 && countB >= 10
	}, 2*time.Second, 5*time.Millisecond)

	n.Handle().RequestCancellation()

	select {
	case err := <-spinAsync(n):
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down")
	}
}

// S6: user callback errors abort the network and surface from Spin.
func TestUserCallbackErrorSurfacesFromSpin(t *testing.T) {
	n := New(context.Background())

	boom := errors.New("boom")
	pub := NewPublisher[int]("faulty", func() (int, error) {
		return 1, nil
	}, WithStrideLength(1))
	sub := NewSubscriber[int]("faulty", func(msg int) error {
		return boom
	})

	require.NoError(t, n.Push(pub, sub))

	select {
	case err := <-spinAsync(n):
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down")
	}
}

// Push rejects values that are neither a Routine nor an attachable chain.
func TestPushRejectsUnsupportedValue(t *testing.T) {
	n := New(context.Background())

	err := n.Push("not a routine")
	require.Error(t, err)
}

// S7: registry overflow is returned as an error from Push, not a panic.
func TestPushReturnsRegistryOverflow(t *testing.T) {
	n := New(context.Background(), WithConfig(config.New(config.WithMaxResources(1))))

	pubA := NewPublisher[int]("a", func() (int, error) { return 1, nil })
	pubB := NewPublisher[int]("b", func() (int, error) { return 1, nil })

	require.NoError(t, n.Push(pubA))
	err := n.Push(pubB)
	require.Error(t, err)
}

// S8: requesting cancellation multiple times behaves identically to once.
func TestHandleRequestCancellationIsIdempotent(t *testing.T) {
	n := New(context.Background())

	sub := NewSubscriber[int]("idempotent", func(msg int) error { return nil })
	require.NoError(t, n.Push(sub))

	h := n.Handle()
	h.RequestCancellation()
	h.RequestCancellation()
	h.RequestCancellation()

	select {
	case err := <-spinAsync(n):
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down after repeated cancellation")
	}
}

func TestCancelAfterTriggersShutdown(t *testing.T) {
	n := New(context.Background())

	sub := NewSubscriber[int]("timed-out", func(msg int) error { return nil })
	require.NoError(t, n.Push(sub))

	n.CancelAfter(20 * time.Millisecond)

	select {
	case err := <-spinAsync(n):
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("network did not shut down after CancelAfter elapsed")
	}
}

// S5: 100 publishers feed a single channel with 10,000 messages each; the
// union of everything a lone subscriber observes must be an exact
// permutation of [0, 999999] with no loss and no duplication, regardless of
// the per-publisher batch size — drawn from a seeded source so a failing
// run is reproducible.
func TestHundredPublishersDeliverExactPermutationNoDuplication(t *testing.T) {
	const producers = 100
	const perProducer = 10000
	const total = producers * perProducer
	const outOfRange = -1

	suite := testsuite.NewSuite(t)

	n := New(context.Background(), WithConfig(config.New(config.WithMessageBufferSize(1024))))

	routines := make([]Routine, 0, producers+1)
	for p := 0; p < producers; p++ {
		base := p * perProducer
		var produced atomic.Int64
		strideLength := suite.RandIntRange(1, 32)

		routines = append(routines, NewPublisher[int]("firehose", func() (int, error) {
			i := produced.Add(1) - 1
			if i < perProducer {
				return base + int(i), nil
			}

			return outOfRange, nil
		}, WithStrideLength(strideLength)))
	}

	seen := make(map[int]bool, total)
	var mu sync.Mutex
	routines = append(routines, NewSubscriber[int]("firehose", func(msg int) error {
		if msg == outOfRange {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()

		require.False(t, seen[msg], "value delivered twice: %d", msg)
		seen[msg] = true
		if len(seen) >= total {
			n.Handle().RequestCancellation()
		}

		return nil
	}))

	require.NoError(t, n.Push(routines))

	done := make(chan error, 1)
	go func() { done <- n.Spin(nil) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("network did not deliver all 1,000,000 messages and shut down")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, total)
	for v := 0; v < total; v++ {
		assert.True(t, seen[v], "value %d never observed", v)
	}
}

func spinAsync(n *Network) <-chan error {
	done := make(chan error, 1)
	go func() { done <- n.Spin(nil) }()

	return done
}
