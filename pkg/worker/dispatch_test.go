package worker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jzx17/threadloop/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Next(t *testing.T) {
	d := newDispatcher(3)

	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, d.next())
	}

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestDispatcher_Route(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		expectedIdx   int
		expectedRoute types.Route
	}{
		{"first key takes cursor worker", "a", 0, types.RouteAffinityNew},
		{"second key takes next cursor worker", "b", 1, types.RouteAffinityNew},
		{"bound key does not move cursor", "a", 0, types.RouteAffinityBound},
		{"empty key is round robin", "", 2, types.RouteRoundRobin},
		{"cursor wraps for new key", "c", 0, types.RouteAffinityNew},
		{"bound key after wrap", "b", 1, types.RouteAffinityBound},
	}

	// the cases share one dispatcher and run in order
	d := newDispatcher(3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, route := d.route(tt.key)
			assert.Equal(t, tt.expectedIdx, idx)
			assert.Equal(t, tt.expectedRoute, route)
		})
	}

	assert.Equal(t, 3, d.boundKeys())
}

func TestDispatcher_ConcurrentRouteBindsOnce(t *testing.T) {
	d := newDispatcher(4)

	var wg sync.WaitGroup
	results := make([][]int, 8)
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				idx, _ := d.route(fmt.Sprintf("key-%d", i%10))
				results[g] = append(results[g], idx)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, d.boundKeys())
	for g := range results {
		for i, idx := range results[g] {
			bound, ok := d.lookup(fmt.Sprintf("key-%d", i%10))
			assert.True(t, ok)
			assert.Equal(t, bound, idx)
		}
	}
}

func TestDispatcher_Release(t *testing.T) {
	d := newDispatcher(2)
	d.route("a")

	d.release()

	_, ok := d.lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 0, d.boundKeys())
}
