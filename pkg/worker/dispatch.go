package worker

import (
	"sync"

	"github.com/jzx17/threadloop/pkg/types"
)

// dispatcher holds the round-robin cursor and the key to worker routing
// table. Both live under one mutex, separate from every worker queue lock.
type dispatcher struct {
	mu     sync.Mutex
	size   int
	cursor int
	routes map[string]int
}

func newDispatcher(size int) *dispatcher {
	return &dispatcher{
		size:   size,
		routes: make(map[string]int),
	}
}

// next returns the worker at the cursor and advances it
func (d *dispatcher) next() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.advance()
}

// advance must be called with mu held
func (d *dispatcher) advance() int {
	idx := d.cursor
	d.cursor = (d.cursor + 1) % d.size
	return idx
}

// route picks the worker for key. An empty key is routed round-robin.
// An unbound key takes the cursor worker, exactly like an unkeyed
// submission, and stays bound to it from then on.
func (d *dispatcher) route(key string) (int, types.Route) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if key == "" {
		return d.advance(), types.RouteRoundRobin
	}
	if idx, ok := d.routes[key]; ok {
		return idx, types.RouteAffinityBound
	}

	idx := d.advance()
	d.routes[key] = idx
	return idx, types.RouteAffinityNew
}

// lookup returns the worker bound to key, if any
func (d *dispatcher) lookup(key string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.routes[key]
	return idx, ok
}

// boundKeys returns the number of keys in the routing table
func (d *dispatcher) boundKeys() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.routes)
}

// release drops the routing table
func (d *dispatcher) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = make(map[string]int)
}
