package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/jzx17/threadloop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelWaker_SignalBeforeWait(t *testing.T) {
	waker, err := NewChannelWaker()
	require.NoError(t, err)
	defer waker.Close()

	waker.Signal()

	done := make(chan error, 1)
	go func() {
		done <- waker.Wait()
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("signal sent before Wait was lost")
	}
}

func TestChannelWaker_SignalsCoalesce(t *testing.T) {
	waker, err := NewChannelWaker()
	require.NoError(t, err)
	defer waker.Close()

	for i := 0; i < 10; i++ {
		waker.Signal()
	}

	require.NoError(t, waker.Wait())

	// all ten signals collapsed into the single wakeup above
	done := make(chan error, 1)
	go func() {
		done <- waker.Wait()
	}()

	select {
	case <-done:
		t.Fatal("expected coalesced signals to produce one wakeup")
	case <-time.After(20 * time.Millisecond):
	}

	waker.Signal()
	assert.NoError(t, <-done)
}

func TestChannelWaker_ConcurrentSignal(t *testing.T) {
	waker, err := NewChannelWaker()
	require.NoError(t, err)
	defer waker.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			waker.Signal()
		}()
	}
	wg.Wait()

	assert.NoError(t, waker.Wait())
}

func TestChannelWaker_Close(t *testing.T) {
	waker, err := NewChannelWaker()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- waker.Wait()
	}()

	require.NoError(t, waker.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, types.ErrWakerClosed)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Close")
	}

	// Close is idempotent and Signal after Close is a no-op
	assert.NoError(t, waker.Close())
	assert.NotPanics(t, waker.Signal)
}
