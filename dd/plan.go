package dd

// Plan is the CommPlan of §3/§4.C: an unstructured all-to-all schedule
// described as paired (send, receive) lists of local indices plus per-peer
// offset arrays sized P+1, where offsets[i:i+1] brackets the slice of the
// corresponding list destined for (or arriving from) peer i.
//
// isEmpty's naming inversion flagged in §9's Open Questions is resolved
// here as two separate, clearly named predicates: BothEmpty (truly empty,
// nothing populated on either side) and AnyNonEmpty (the source's actual
// `isEmpty` behaviour — "initialised", i.e. at least one side populated).
type Plan struct {
	P int

	SendList    []int
	SendProcs   []int
	SendOffsets []int

	RecvList    []int
	RecvProcs   []int
	RecvOffsets []int
}

// NewPlan allocates a Plan with P+1-length offset arrays, both zeroed.
func NewPlan(p int) *Plan {
	return &Plan{
		P:           p,
		SendOffsets: make([]int, p+1),
		RecvOffsets: make([]int, p+1),
	}
}

// Resize re-sizes the offset arrays to p+1 and clears every list, for reuse
// of a Plan value across a different transport group size.
func (pl *Plan) Resize(p int) {
	pl.P = p
	pl.SendOffsets = make([]int, p+1)
	pl.RecvOffsets = make([]int, p+1)
	pl.SendList, pl.SendProcs = nil, nil
	pl.RecvList, pl.RecvProcs = nil, nil
}

// BothEmpty reports whether neither side of the plan carries any payload.
func (pl *Plan) BothEmpty() bool {
	return len(pl.SendList) == 0 && len(pl.RecvList) == 0
}

// AnyNonEmpty reports whether either side carries payload — the predicate
// the source's inverted-sounding isEmpty actually computed.
func (pl *Plan) AnyNonEmpty() bool {
	return !pl.BothEmpty()
}

// Swap exchanges the send and receive triples (list, procs, offsets) in
// place, turning a receive-side description into a send-side one or vice
// versa. buildRecvPlan is exactly Swap, buildSendPlan, Swap.
func (pl *Plan) Swap() {
	pl.SendList, pl.RecvList = pl.RecvList, pl.SendList
	pl.SendProcs, pl.RecvProcs = pl.RecvProcs, pl.SendProcs
	pl.SendOffsets, pl.RecvOffsets = pl.RecvOffsets, pl.SendOffsets
}

// ClearList wipes both lists and resets the offset arrays to zero while
// keeping their P+1 length, so the plan's peer topology can be reused
// without a fresh allocation.
func (pl *Plan) ClearList() {
	pl.SendList, pl.RecvList = nil, nil
	pl.SendProcs, pl.RecvProcs = nil, nil
	for i := range pl.SendOffsets {
		pl.SendOffsets[i] = 0
	}
	for i := range pl.RecvOffsets {
		pl.RecvOffsets[i] = 0
	}
}

// WellFormed checks invariant 1 of §3: both offset arrays are
// monotonically non-decreasing and start at zero.
func (pl *Plan) WellFormed() bool {
	return monotone(pl.SendOffsets) && monotone(pl.RecvOffsets)
}

func monotone(offs []int) bool {
	if len(offs) == 0 || offs[0] != 0 {
		return false
	}
	for i := 1; i < len(offs); i++ {
		if offs[i] < offs[i-1] {
			return false
		}
	}
	return true
}

// prefixSum turns a slice of per-peer counts stored at offs[1:] into
// monotone offsets in place: offs[i+1] += offs[i] for increasing i.
func prefixSum(offs []int) {
	for i := 1; i < len(offs); i++ {
		offs[i] += offs[i-1]
	}
}
