// Package workerpool implements the worker-local data-parallel map §5
// permits for SFC key compute: "a block-range parallel map + parallel
// sort... must not change observable results beyond tie-broken ordering
// on duplicate keys." Grounded on model_problems/Euler2D.RungeKutta4SSP's
// per-partition goroutine dispatch (one goroutine per utils.PartitionMap
// bucket, joined with a sync.WaitGroup) — the teacher's own shape for
// splitting a range of work across goroutines without a generic pool
// abstraction.
package workerpool

import (
	"sync"

	"github.com/partmesh/dimm/utils"
)

// Map splits [0,n) into workers contiguous buckets using the teacher's
// "+residue" utils.PartitionMap.Split1D rule (the same rule
// dd.RoundRobinMap generalizes across ranks) and runs fn(lo,hi) on each
// bucket in its own goroutine, waiting for all to finish before
// returning. workers <= 1 or n <= 1 runs fn synchronously on the whole
// range — no goroutine overhead for small inputs.
func Map(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	pm := utils.NewPartitionMap(workers, n)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		lo, hi := pm.GetBucketRange(w)
		go func(lo, hi int) {
			defer wg.Done()
			if hi > lo {
				fn(lo, hi)
			}
		}(lo, hi)
	}
	wg.Wait()
}
