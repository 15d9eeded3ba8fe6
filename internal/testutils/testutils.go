// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Recorder collects task labels in execution order
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends a label
func (r *Recorder) Record(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, label)
}

// Events returns a copy of the recorded labels
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded labels
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// WaitGroupTimeout waits for wg and fails the test if it takes longer than timeout
func WaitGroupTimeout(t testing.TB, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		require.FailNow(t, "timed out waiting for tasks")
	}
}

// ReturnsWithin asserts that fn returns before timeout
func ReturnsWithin(t testing.TB, timeout time.Duration, fn func(), msgAndArgs ...interface{}) bool {
	t.Helper()

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return assert.Fail(t, "call did not return in time", msgAndArgs...)
	}
}
