package worker

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jzx17/threadloop/pkg/types"
)

var _ types.Dispatcher = (*Pool)(nil)

// Pool implements a fixed-size pool of event-loop workers with round-robin
// and key affinity dispatch
type Pool struct {
	config   *Config
	workers  []*Worker
	dispatch *dispatcher
	metrics  *poolMetrics
	logger   *slog.Logger

	startOnce sync.Once
	closeOnce sync.Once
}

// NewPool creates a new pool. Workers are created but not started.
// A nil config uses DefaultConfig.
func NewPool(config *Config) (*Pool, error) {
	cfg := config.withDefaults()

	// parameter validation
	if cfg.PoolSize <= 0 {
		return nil, fmt.Errorf("%w, got %d", types.ErrInvalidPoolSize, cfg.PoolSize)
	}

	pool := &Pool{
		config:   cfg,
		workers:  make([]*Worker, 0, cfg.PoolSize),
		dispatch: newDispatcher(cfg.PoolSize),
		logger:   cfg.Logger.With("pool", cfg.Name),
	}

	// create workers
	for i := 0; i < cfg.PoolSize; i++ {
		worker, err := NewWorker(i, cfg)
		if err != nil {
			pool.closeWorkers()
			return nil, fmt.Errorf("create pool %s: %w", cfg.Name, err)
		}
		pool.workers = append(pool.workers, worker)
	}

	if cfg.Registerer != nil {
		metrics, err := newPoolMetrics(cfg.Registerer, cfg.MetricsPrefix, pool)
		if err != nil {
			pool.closeWorkers()
			return nil, fmt.Errorf("create pool %s: %w", cfg.Name, err)
		}
		pool.metrics = metrics
		for _, worker := range pool.workers {
			worker.metrics = metrics
		}
	}

	return pool, nil
}

// Start starts every worker loop. Calls after the first are no-ops.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for _, worker := range p.workers {
			worker.Start()
		}
		p.logger.Debug("pool started", "pool_size", len(p.workers))
	})
}

// Submit dispatches a task to the worker at the round-robin cursor and
// advances the cursor. A nil task is ignored.
func (p *Pool) Submit(task types.Task) {
	if task == nil {
		return
	}
	p.enqueue(p.dispatch.next(), types.RouteRoundRobin, task)
}

// SubmitWithKey dispatches a task to the worker bound to key. The first
// task seen for a key goes to the round-robin cursor worker, which is then
// bound to the key for the lifetime of the pool. An empty key behaves like
// Submit. A nil task is ignored and does not bind the key.
func (p *Pool) SubmitWithKey(key string, task types.Task) {
	if task == nil {
		return
	}
	idx, route := p.dispatch.route(key)
	p.enqueue(idx, route, task)
}

func (p *Pool) enqueue(idx int, route types.Route, task types.Task) {
	p.workers[idx].Enqueue(task)
	p.metrics.observeSubmit(route)
}

// WorkerFor returns the index of the worker bound to key
func (p *Pool) WorkerFor(key string) (int, bool) {
	return p.dispatch.lookup(key)
}

// Close stops every worker, waits for each loop to exit and releases the
// routing table. It is idempotent. Tasks still queued are abandoned, and
// tasks submitted afterwards are accepted but never run.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closeWorkers()
		p.metrics.unregister()
		p.dispatch.release()
		p.logger.Debug("pool closed")
	})
}

// closeWorkers stops all workers first so they shut down concurrently,
// then joins them one by one
func (p *Pool) closeWorkers() {
	for _, worker := range p.workers {
		worker.Stop()
	}
	for _, worker := range p.workers {
		worker.Close()
	}
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return len(p.workers)
}

// pending returns the number of tasks queued across all workers
func (p *Pool) pending() int {
	var n int
	for _, worker := range p.workers {
		n += worker.Pending()
	}
	return n
}

// Stats gets aggregated pool statistics
func (p *Pool) Stats() PoolStats {
	stats := PoolStats{
		PoolSize:  len(p.workers),
		BoundKeys: p.dispatch.boundKeys(),
	}
	for _, worker := range p.workers {
		ws := worker.Stats()
		stats.Pending += ws.Pending
		stats.Executed += ws.Executed
		stats.Panicked += ws.Panicked
		stats.Batches += ws.Batches
		if ws.IsStopped() {
			stats.StoppedWorkers++
		}
	}
	return stats
}

// WorkerStats gets statistics of all Workers, indexed by worker ID
func (p *Pool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, worker := range p.workers {
		stats[i] = worker.Stats()
	}
	return stats
}

// PoolStats defines aggregated pool statistics
type PoolStats struct {
	PoolSize  int
	BoundKeys int
	Pending   int
	Executed  int64
	Panicked  int64
	Batches   int64

	// StoppedWorkers counts workers whose loop has exited. The pool does
	// not react to it; tasks routed to a stopped worker are never run.
	StoppedWorkers int
}
