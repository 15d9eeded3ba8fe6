package worker

import (
	"sync"

	"github.com/jzx17/threadloop/pkg/types"
)

// Waker is the wakeup/wait primitive a worker loop blocks on.
//
// Signal may be called from any goroutine and never blocks. Signals are
// coalescing: any number of Signal calls made before a Wait produce a single
// wakeup, and a Signal made before Wait starts is not lost. Wait returns nil
// on a normal wakeup and an error when waiting can no longer proceed, which
// makes the worker loop exit. Close releases the primitive; Signal after
// Close is a no-op.
type Waker interface {
	Signal()
	Wait() error
	Close() error
}

// WakerFactory creates the Waker for a new worker
type WakerFactory func() (Waker, error)

// channelWaker implements Waker with a one-slot channel used as a
// level-triggered token.
type channelWaker struct {
	token     chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannelWaker creates the default channel-based Waker
func NewChannelWaker() (Waker, error) {
	return &channelWaker{
		token:  make(chan struct{}, 1),
		closed: make(chan struct{}),
	}, nil
}

// Signal leaves a token for the waiter. A pending token absorbs the signal.
func (w *channelWaker) Signal() {
	select {
	case w.token <- struct{}{}:
	default:
	}
}

// Wait blocks until a token is available or the waker is closed
func (w *channelWaker) Wait() error {
	select {
	case <-w.token:
		return nil
	case <-w.closed:
		return types.ErrWakerClosed
	}
}

// Close releases the waker. The token channel is never closed so that
// late Signal calls cannot panic.
func (w *channelWaker) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
	})
	return nil
}
