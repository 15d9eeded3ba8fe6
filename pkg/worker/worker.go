package worker

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/threadloop/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateCreated represents a worker whose loop was never started
	WorkerStateCreated WorkerState = iota
	// WorkerStateIdle represents a loop blocked waiting for a wakeup
	WorkerStateIdle
	// WorkerStateDraining represents a loop swapping out its pending queue
	WorkerStateDraining
	// WorkerStateExecuting represents a loop running a drained batch
	WorkerStateExecuting
	// WorkerStateStopped represents a loop that has exited
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateCreated:
		return "created"
	case WorkerStateIdle:
		return "idle"
	case WorkerStateDraining:
		return "draining"
	case WorkerStateExecuting:
		return "executing"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker runs a single event loop goroutine over a private task queue
type Worker struct {
	id    int
	state int32 // atomic state

	// lifecycle
	quit      atomic.Bool
	started   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	// pending tasks, guarded by mu
	mu    sync.Mutex
	queue []types.Task

	waker Waker

	// statistics
	executed      int64
	panicked      int64
	batches       int64
	lastBatchSize int64
	lastDrainAt   int64 // Unix nanosecond timestamp

	panicPolicy  PanicPolicy
	panicHandler func(error)
	metrics      *poolMetrics
	clock        types.Clock
	logger       *slog.Logger
}

// NewWorker creates a new Worker. A nil config uses DefaultConfig.
// It fails only if the wakeup primitive cannot be created.
func NewWorker(id int, config *Config) (*Worker, error) {
	cfg := config.withDefaults()

	waker, err := cfg.WakerFactory()
	if err != nil {
		return nil, fmt.Errorf("worker %d: create waker: %w", id, err)
	}

	return &Worker{
		id:           id,
		state:        int32(WorkerStateCreated),
		done:         make(chan struct{}),
		waker:        waker,
		panicPolicy:  cfg.PanicPolicy,
		panicHandler: cfg.PanicHandler,
		clock:        cfg.Clock,
		logger:       cfg.Logger.With("worker_id", id),
	}, nil
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

func (w *Worker) setState(state WorkerState) {
	atomic.StoreInt32(&w.state, int32(state))
}

// Done returns a channel that is closed once the loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Start spawns the loop goroutine. Calls after the first are no-ops, as is
// Start after Close.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.setState(WorkerStateIdle)
	go w.run()
}

// run is the event loop: wait, check shutdown, drain, repeat
func (w *Worker) run() {
	defer close(w.done)
	defer w.setState(WorkerStateStopped)

	w.logger.Debug("worker loop started")

	for {
		if err := w.waker.Wait(); err != nil {
			w.logger.Error("worker wait failed, loop exiting", "error", err)
			return
		}
		if w.quit.Load() {
			w.logger.Debug("worker loop stopped")
			return
		}
		w.drainAndExecute()
	}
}

// Enqueue appends a task to the tail of the queue and wakes the loop.
// Safe for concurrent use.
func (w *Worker) Enqueue(task types.Task) {
	w.mu.Lock()
	w.queue = append(w.queue, task)
	w.mu.Unlock()

	w.waker.Signal()
}

// drainAndExecute swaps out the whole queue and runs it in FIFO order.
// The lock is held only for the swap, never while tasks run.
func (w *Worker) drainAndExecute() {
	w.setState(WorkerStateDraining)

	w.mu.Lock()
	batch := w.queue
	w.queue = nil
	w.mu.Unlock()

	// a coalesced signal may find its tasks already drained
	if len(batch) == 0 {
		w.setState(WorkerStateIdle)
		return
	}

	w.setState(WorkerStateExecuting)
	start := w.clock.Now()
	atomic.StoreInt64(&w.lastDrainAt, start.UnixNano())

	var panics int
	for i, task := range batch {
		if !w.execute(task) {
			panics++
		}
		batch[i] = nil
	}

	atomic.AddInt64(&w.batches, 1)
	atomic.StoreInt64(&w.lastBatchSize, int64(len(batch)))
	w.metrics.observeBatch(len(batch), panics, w.clock.Since(start))

	w.setState(WorkerStateIdle)
}

// execute runs one task and reports whether it completed without panicking
func (w *Worker) execute(task types.Task) (ok bool) {
	if w.panicPolicy == PanicPropagate {
		task()
		atomic.AddInt64(&w.executed, 1)
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			w.handlePanic(types.NewTaskPanicError(w.id, r, buf[:n]))
			atomic.AddInt64(&w.panicked, 1)
			ok = false
		}
	}()

	task()
	atomic.AddInt64(&w.executed, 1)
	return true
}

// handlePanic reports a recovered panic
func (w *Worker) handlePanic(err *types.TaskPanicError) {
	if w.panicHandler != nil {
		w.panicHandler(err)
		return
	}
	w.logger.Error("task panicked", "error", err, "stack", err.Stack)
}

// Stop asks the loop to exit at its next wakeup. Idempotent and safe for
// concurrent use. A running task is not interrupted and tasks still queued
// are abandoned.
func (w *Worker) Stop() {
	w.quit.Store(true)
	w.waker.Signal()
}

// Close stops the loop, waits for it to exit and then releases the waker.
// A worker that was never started is closed without blocking.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		w.Stop()

		// claim the start slot so a later Start cannot spawn a loop
		if w.started.CompareAndSwap(false, true) {
			w.setState(WorkerStateStopped)
			close(w.done)
		}
		<-w.done

		if err := w.waker.Close(); err != nil {
			w.logger.Warn("failed to release waker", "error", err)
		}
	})
}

// Pending returns the number of queued tasks not yet drained
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	var lastDrainAt time.Time
	if ns := atomic.LoadInt64(&w.lastDrainAt); ns != 0 {
		lastDrainAt = time.Unix(0, ns)
	}

	return WorkerStats{
		ID:            w.id,
		State:         w.State(),
		Pending:       w.Pending(),
		Executed:      atomic.LoadInt64(&w.executed),
		Panicked:      atomic.LoadInt64(&w.panicked),
		Batches:       atomic.LoadInt64(&w.batches),
		LastBatchSize: int(atomic.LoadInt64(&w.lastBatchSize)),
		LastDrainAt:   lastDrainAt,
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID            int
	State         WorkerState
	Pending       int
	Executed      int64
	Panicked      int64
	Batches       int64
	LastBatchSize int
	LastDrainAt   time.Time
}

// IsStopped checks if the Worker loop has exited
func (ws WorkerStats) IsStopped() bool {
	return ws.State == WorkerStateStopped
}

// IsIdle checks if Worker is idle
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateIdle
}
