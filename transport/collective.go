package transport

import "sync"

// cyclicBarrier is a reusable generation-counted barrier: n participants
// call wait(); the n-th arrival releases all n and resets for the next
// round. Standard monitor pattern (condition re-checked in a loop so
// spurious and cross-phase wakeups are harmless).
type cyclicBarrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   uint64
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *cyclicBarrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for b.gen == gen {
		b.cond.Wait()
	}
}

// gatherPoint implements AllGather as a two-phase rendezvous: phase one
// collects every rank's contribution into a shared buffer, phase two lets
// every rank copy the completed buffer out before it is reset for the next
// call. Both phases use the same condition variable; since the guard
// conditions for the two phases never overlap (arrived reaches n strictly
// before leftCount starts counting), a broadcast from one phase cannot be
// mistaken for the other.
type gatherPoint struct {
	mu        sync.Mutex
	cond      *sync.Cond
	n         int
	arrived   int
	leftCount int
	m         int
	buf       []int32
}

func newGatherPoint(n int) *gatherPoint {
	g := &gatherPoint{n: n}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gatherPoint) allGather(rank int, send []int32) []int32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.arrived == 0 {
		g.m = len(send)
		g.buf = make([]int32, g.n*g.m)
	}
	copy(g.buf[rank*g.m:(rank+1)*g.m], send)
	g.arrived++
	if g.arrived == g.n {
		g.cond.Broadcast()
	}
	for g.arrived < g.n {
		g.cond.Wait()
	}

	out := make([]int32, len(g.buf))
	copy(out, g.buf)

	g.leftCount++
	if g.leftCount == g.n {
		g.arrived = 0
		g.leftCount = 0
		g.buf = nil
		g.cond.Broadcast()
	}
	for g.leftCount != 0 {
		g.cond.Wait()
	}
	return out
}

// reducePoint implements ReduceMax the same way as gatherPoint, combining
// with max instead of concatenating.
type reducePoint struct {
	mu        sync.Mutex
	cond      *sync.Cond
	n         int
	arrived   int
	leftCount int
	value     float64
}

func newReducePoint(n int) *reducePoint {
	r := &reducePoint{n: n}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *reducePoint) reduceMax(v float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.arrived == 0 {
		r.value = v
	} else if v > r.value {
		r.value = v
	}
	r.arrived++
	if r.arrived == r.n {
		r.cond.Broadcast()
	}
	for r.arrived < r.n {
		r.cond.Wait()
	}

	out := r.value

	r.leftCount++
	if r.leftCount == r.n {
		r.arrived = 0
		r.leftCount = 0
		r.cond.Broadcast()
	}
	for r.leftCount != 0 {
		r.cond.Wait()
	}
	return out
}
