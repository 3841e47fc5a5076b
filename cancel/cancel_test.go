package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceNotCancelledInitially(t *testing.T) {
	src := New(nil)
	assert.False(t, src.IsCancellationRequested())

	select {
	case <-src.Done():
		t.Fatal("Done channel should not be closed yet")
	default:
	}
}

func TestHandleRequestCancellation(t *testing.T) {
	src := New(nil)
	handle := src.Handle()

	handle.RequestCancellation()

	assert.True(t, src.IsCancellationRequested())
	<-src.Done()
}

func TestHandleIdempotent(t *testing.T) {
	src := New(nil)
	handle := src.Handle()

	assert.NotPanics(t, func() {
		handle.RequestCancellation()
		handle.RequestCancellation()
		handle.RequestCancellation()
	})
	assert.True(t, src.IsCancellationRequested())
}

func TestZeroHandleRequestCancellationIsNoop(t *testing.T) {
	var h Handle
	assert.NotPanics(t, h.RequestCancellation)
}

func TestFanOutRequestsAll(t *testing.T) {
	a := New(nil)
	b := New(nil)

	var out FanOut
	out.Add(a.Handle())
	out.Add(b.Handle())

	out.RequestCancellation()

	assert.True(t, a.IsCancellationRequested())
	assert.True(t, b.IsCancellationRequested())
}

func TestFanOutEmptyIsNoop(t *testing.T) {
	var out FanOut
	assert.NotPanics(t, out.RequestCancellation)
}
