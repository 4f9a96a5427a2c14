// Package transport defines the GroupTransport collaborator (§6): ranked
// point-to-point send/receive, persistent request handles, collective
// all-gather and max-reduction, and a barrier. The core DD/CommPlan/SFC
// packages depend only on the Group interface; process launch and the
// wire protocol itself are left to whatever Group implementation the
// caller wires in.
//
// The reference implementation in this package, NewLocalGroup, runs the P
// ranks of a job as goroutines inside one process — the same SPMD-over-
// goroutines shape the teacher uses for its own shared-memory domain
// decomposition (a MailBox per thread, a PartitionMap splitting global
// indices across threads). A real cluster transport (MPI, gRPC, …) is a
// second Group implementation behind the same interface; none is bundled
// here because it depends on infrastructure outside this module.
package transport

import "context"

// Request is a handle to an in-flight or persistent send/receive. The nil
// *Request is the null-request sentinel required by §6: Start, Wait, and
// RequestFree are all no-ops on nil.
type Request struct {
	group     *LocalGroup
	persist   bool
	isSend    bool
	peer      int
	tag       int
	buf       []byte
	started   bool
	done      chan struct{}
	freed     bool
}

// Group is the GroupTransport collaborator interface (§6).
type Group interface {
	// Rank returns this process's rank within the group.
	Rank() int
	// Size returns the number of ranks in the group.
	Size() int
	// Barrier blocks until every rank has entered it.
	Barrier()
	// AllGather exchanges a fixed-size slice of int32 counts with every
	// other rank and returns the concatenation ordered by rank: the
	// returned slice has length Size()*len(send) and
	// result[r*len(send):(r+1)*len(send)] is the slice rank r contributed.
	AllGather(send []int32) []int32
	// ReduceMax combines v across every rank with max and returns the
	// result to every rank (an all-reduce, not a reduce-to-root).
	ReduceMax(v float64) float64
	// ISend posts a one-shot nonblocking send and returns immediately;
	// the returned request must be waited on before buf is reused.
	ISend(buf []byte, peer, tag int) *Request
	// IRecv posts a one-shot nonblocking receive into buf.
	IRecv(buf []byte, peer, tag int) *Request
	// SendInit creates a persistent send request bound to buf, peer and
	// tag without starting it.
	SendInit(buf []byte, peer, tag int) *Request
	// RecvInit creates a persistent receive request bound to buf, peer
	// and tag without starting it.
	RecvInit(buf []byte, peer, tag int) *Request
	// Start (re)activates a persistent request. A no-op on nil or on a
	// request that is already active.
	Start(r *Request)
	// Wait blocks until r completes. A no-op on nil or on a request that
	// was posted but never started.
	Wait(r *Request)
	// RequestFree releases a request's resources. Safe to call on a
	// request that was posted but never started, and on nil.
	RequestFree(r *Request)
}

// ContextGroup is satisfied by a Group whose blocking operations also
// accept a context.Context, for implementations that back onto a cluster
// transport with real deadlines. The in-process LocalGroup does not
// implement it: §5 states the core exposes no per-operation deadline, so
// context support is an extension point for a future real backend, not a
// requirement of this package's own Group implementation.
type ContextGroup interface {
	Group
	WaitContext(ctx context.Context, r *Request) error
}
