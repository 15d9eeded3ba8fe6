/*
Package worker provides a fixed-size pool of event-loop workers with round-robin and key affinity dispatch.

# Overview

Every Worker owns one goroutine running an event loop over a private task
queue. The loop blocks on a Waker until a producer signals it, swaps the whole
pending queue out under its lock, releases the lock and runs the drained batch
in submission order. Producers never wait behind a running task.

A Pool owns a fixed number of workers and routes each submission:
- Submit sends the task to the worker at the round-robin cursor and advances the cursor
- SubmitWithKey sends every task sharing a key to the same worker
- The first task of a key takes the cursor worker, and the key stays bound to it for the lifetime of the pool

Tasks sharing a key therefore run in strict FIFO order and never concurrently
with each other.

# Core Components

## Worker

- Event loop: Idle -> Draining -> Executing -> Idle, Stopped on shutdown
- Batch draining: a task enqueued by a running task lands in the next batch
- Panic handling according to PanicPolicy
- Statistics: executed, panicked, batches, last batch size and drain time

## Waker

Coalescing wakeup primitive. Signals sent before Wait are kept, and many
signals collapse into one wakeup, which is why the loop always drains the
whole queue. The default implementation is a one-slot channel.

## Pool

- Fixed worker count, default 8
- Round-robin cursor and key routing table behind their own mutex
- Idempotent Start and Close; Close joins every loop before releasing resources
- Optional Prometheus metrics

# Failure Semantics

Submit never fails and there is no queue limit. A worker whose Wait fails
exits its loop, logs the error and is never restarted; the pool keeps routing
to it and those tasks never run. PoolStats.StoppedWorkers makes this visible.

With PanicRecover (the default) a panicking task is reported to the
PanicHandler and the rest of its batch still runs. With PanicPropagate the
panic is not recovered and terminates the process.

# Usage Examples

Basic usage:

	pool, err := worker.NewPool(worker.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	pool.Start()
	defer pool.Close()

	pool.Submit(func() {
		// Execute work
	})

	// all updates for one account run on the same worker, in order
	pool.SubmitWithKey("account-42", func() {
		// Apply update
	})

Configuration from a file:

	config, err := worker.LoadConfig("pool.yaml")
	if err != nil {
		log.Fatal(err)
	}
	config.Registerer = prometheus.DefaultRegisterer
	pool, err := worker.NewPool(config)

# Configuration Options

Config supports the following options:
- Name: pool name used in logs and as the "pool" metric label
- PoolSize: number of workers
- PanicPolicy: recover or propagate
- MetricsPrefix: metric name prefix
- PanicHandler: receives recovered panics
- Logger, Clock, Registerer, WakerFactory: runtime dependencies
*/
package worker
