// Package dd implements the Distributed Directory core: §4.A–§4.D of the
// spec. RoundRobinMap is the "+residue" bijection between a global index
// space and (rank, local index); PersistentBatch, Plan, and Directory build
// on top of it and on transport.Group to move typed payloads between ranks.
package dd

import "fmt"

// RoundRobinMap is the bijection between a global index in [0,N) and
// (rank, local index) across P ranks, following the "+residue" rule of
// §4.A: the first R = N%P ranks own q+1 = N/P+1 entries each, the rest own
// q. Grounded on the teacher's utils.PartitionMap.Split1D, which already
// implements the same remainder-spreading rule for a single process's
// thread-local partitioning; RoundRobinMap generalizes it across the
// transport group and adds the O(1) Pid lookup §4.A requires.
type RoundRobinMap struct {
	n, p, rank int
	q, r       int
	threshold  int
}

// NewRoundRobinMap builds the map for global size n split across the
// ranks of group, as observed from rank's own point of view. N=0 is legal
// (every rank owns nothing); p must be >= 1.
func NewRoundRobinMap(n, p, rank int) *RoundRobinMap {
	if p < 1 {
		panic("dd: RoundRobinMap requires at least one rank")
	}
	if rank < 0 || rank >= p {
		panic("dd: RoundRobinMap rank out of range")
	}
	q, r := n/p, n%p
	return &RoundRobinMap{
		n: n, p: p, rank: rank,
		q: q, r: r,
		threshold: r * (q + 1),
	}
}

// GlobalSize returns N.
func (m *RoundRobinMap) GlobalSize() int { return m.n }

// NumRanks returns P.
func (m *RoundRobinMap) NumRanks() int { return m.p }

// Rank returns the rank this map was constructed for.
func (m *RoundRobinMap) Rank() int { return m.rank }

// Pid returns the rank owning global index id, in constant time.
func (m *RoundRobinMap) Pid(id int) int {
	if id < m.threshold {
		return id / (m.q + 1)
	}
	return m.r + (id-m.threshold)/m.q
}

// Size returns the number of global ids owned by rank r.
func (m *RoundRobinMap) Size(r int) int {
	if r < m.r {
		return m.q + 1
	}
	return m.q
}

// Start returns the first global id owned by rank r.
func (m *RoundRobinMap) Start(r int) int {
	if r <= m.r {
		return r * (m.q + 1)
	}
	return m.r*(m.q+1) + (r-m.r)*m.q
}

// End returns one past the last global id owned by rank r.
func (m *RoundRobinMap) End(r int) int { return m.Start(r) + m.Size(r) }

// LocalSize returns size(rank) for the rank this map was built for.
func (m *RoundRobinMap) LocalSize() int { return m.Size(m.rank) }

// LocalStart returns start(rank).
func (m *RoundRobinMap) LocalStart() int { return m.Start(m.rank) }

// LocalEnd returns end(rank).
func (m *RoundRobinMap) LocalEnd() int { return m.End(m.rank) }

// InDist reports whether id belongs to this map's own rank.
func (m *RoundRobinMap) InDist(id int) bool {
	return id >= m.LocalStart() && id < m.LocalEnd()
}

// Belongs reports whether id belongs to rank r, using the half-open
// interval [start(r), end(r)).
func (m *RoundRobinMap) Belongs(id, r int) bool {
	return id >= m.Start(r) && id < m.End(r)
}

// StartGID returns the first global id owned by the rank that owns id.
func (m *RoundRobinMap) StartGID(id int) int { return m.Start(m.Pid(id)) }

// EndGID returns one past the last global id owned by the rank that owns
// id.
func (m *RoundRobinMap) EndGID(id int) int { return m.End(m.Pid(id)) }

// LocalIndex converts a global id to its offset inside its owner's slice.
func (m *RoundRobinMap) LocalIndex(id int) int { return id - m.StartGID(id) }

// AssertConsistent returns an error if any entry of othersN (the global
// size each rank saw, e.g. from an all-gather) differs from this map's n;
// §4.A notes mismatched N across ranks is undefined behaviour and the
// constructor "may assert equal N". Nothing in cmd/ calls it.
func (m *RoundRobinMap) AssertConsistent(othersN []int) error {
	for r, n := range othersN {
		if n != m.n {
			return fmt.Errorf("dd: RoundRobinMap global size mismatch: rank %d saw %d, rank %d saw %d", m.rank, m.n, r, n)
		}
	}
	return nil
}
