package dd

import (
	"github.com/partmesh/dimm/dderr"
	"github.com/partmesh/dimm/transport"
)

// Directory is the DistributedDirectory of §4.D: a generic typed
// distributed array of element type T, composed with (not embedded from)
// a RoundRobinMap — resolving the "base-class is-a HashFun mixin" design
// note via delegation instead of inheritance. T must be a fixed-layout
// value type since elements cross the wire as raw bytes (§4.D.4).
type Directory[T any] struct {
	rrmap *RoundRobinMap
	group transport.Group
	data  []T
}

// NewDirectory builds a Directory over rrmap's local slice, using group
// for all point-to-point and collective traffic. The local array starts
// zero-valued at length rrmap.LocalSize().
func NewDirectory[T any](rrmap *RoundRobinMap, group transport.Group) *Directory[T] {
	return &Directory[T]{rrmap: rrmap, group: group, data: make([]T, rrmap.LocalSize())}
}

// Map returns the RoundRobinMap this directory delegates partitioning to.
func (d *Directory[T]) Map() *RoundRobinMap { return d.rrmap }

// Data returns the local backing array. Concurrent mutation of it during a
// Read or Migrate is undefined, per §5's shared-resource policy.
func (d *Directory[T]) Data() []T { return d.data }

// SetData replaces the local backing array wholesale, e.g. after an
// external bulk load from the store adapter. len(v) must equal
// rrmap.LocalSize().
func (d *Directory[T]) SetData(v []T) {
	if len(v) != d.rrmap.LocalSize() {
		panic("dd: Directory.SetData length does not match RoundRobinMap.LocalSize")
	}
	d.data = v
}

// ListToPlan implements §4.D.3: turns a flat list of global indices this
// rank wants into a plan whose receive side announces them, grouped by
// owner and converted to peer-local form. Within each owner's slice the
// ids, duplicates included, keep the order they have in globalIDs (§5's
// ordering guarantee); ids of different owners are not interleaved.
func (d *Directory[T]) ListToPlan(globalIDs []int) *Plan {
	p := d.group.Size()
	plan := NewPlan(p)
	plan.RecvList = make([]int, len(globalIDs))

	for _, id := range globalIDs {
		owner := d.rrmap.Pid(id)
		plan.RecvOffsets[owner+1]++
	}
	prefixSum(plan.RecvOffsets)

	cursor := make([]int, p)
	copy(cursor, plan.RecvOffsets[:p])
	for _, id := range globalIDs {
		owner := d.rrmap.Pid(id)
		plan.RecvList[cursor[owner]] = id - d.rrmap.Start(owner)
		cursor[owner]++
	}
	return plan
}

// BuildSendPlan implements §4.D.1: schedule inversion given a plan whose
// receive side is already populated. Three phases: announce sizes via one
// collective all-gather of the P×P "who-sends-how-much-to-whom" matrix;
// size the local send side by reading column `me` and prefix-summing;
// exchange identities with one nonblocking send per owner and one
// nonblocking receive per demanding peer, tagged per §5's (src,dst)
// discipline.
func (d *Directory[T]) BuildSendPlan(plan *Plan) error {
	return InvertToSendPlan(d.group, plan)
}

// BuildRecvPlan implements §4.D.2: the dual of BuildSendPlan, by symmetry —
// swap the plan, invert, swap back.
func (d *Directory[T]) BuildRecvPlan(plan *Plan) error {
	return InvertToRecvPlan(d.group, plan)
}

// InvertToSendPlan is the group-level form of BuildSendPlan: it needs only
// a transport.Group, not a whole Directory, so callers that build a plan
// directly from raw connectivity (meshsched) can invert it without
// standing up a directory purely to reach its group handle.
func InvertToSendPlan(group transport.Group, plan *Plan) error {
	me, p := group.Rank(), group.Size()
	if plan.P != p {
		return dderr.Invariant("buildSendPlan: plan sized for %d peers, group has %d", plan.P, p)
	}

	// Phase 1: announce sizes.
	recvSizes := make([]int32, p)
	for i := 0; i < p; i++ {
		recvSizes[i] = int32(plan.RecvOffsets[i+1] - plan.RecvOffsets[i])
	}
	matrix := group.AllGather(recvSizes)
	if len(matrix) != p*p {
		return dderr.Invariant("buildSendPlan: all-gather returned %d entries, want %d", len(matrix), p*p)
	}

	// Phase 2: size local sends. Column me of the matrix is what each
	// peer j wants to receive from me.
	sendOffsets := make([]int, p+1)
	for j := 0; j < p; j++ {
		sendOffsets[j+1] = int(matrix[j*p+me])
	}
	prefixSum(sendOffsets)
	plan.SendOffsets = sendOffsets
	sendTotal := sendOffsets[p]
	sendList := make([]int, sendTotal)

	// Phase 3: exchange identities.
	recvTotal := len(plan.RecvList)
	recvListI32 := make([]int32, recvTotal)
	for i, v := range plan.RecvList {
		recvListI32[i] = int32(v)
	}

	const elemSize = 4
	batch := NewBatch(group)
	Resize[int32](batch, recvTotal+sendTotal)
	view := AsSend[int32](batch)
	copy(view[:recvTotal], recvListI32)

	for i := 0; i < p; i++ {
		if i == me {
			continue
		}
		lo, hi := plan.RecvOffsets[i], plan.RecvOffsets[i+1]
		if hi > lo {
			batch.Post(i, lo*elemSize, (hi-lo)*elemSize, me, DirSend)
		}
	}
	for j := 0; j < p; j++ {
		if j == me {
			continue
		}
		lo, hi := sendOffsets[j], sendOffsets[j+1]
		if hi > lo {
			batch.Post(j, (recvTotal+lo)*elemSize, (hi-lo)*elemSize, j, DirRecv)
		}
	}
	batch.Start()
	batch.Wait()
	batch.FreeReqs()

	result := AsRecv[int32](batch)
	for i := 0; i < sendTotal; i++ {
		sendList[i] = int(result[recvTotal+i])
	}

	// Self slice never crosses the wire.
	rlo, rhi := plan.RecvOffsets[me], plan.RecvOffsets[me+1]
	slo, shi := sendOffsets[me], sendOffsets[me+1]
	if rhi-rlo != shi-slo {
		return dderr.Invariant("buildSendPlan: self slice size mismatch recv=%d send=%d", rhi-rlo, shi-slo)
	}
	copy(sendList[slo:shi], plan.RecvList[rlo:rhi])

	plan.SendList = sendList
	return nil
}

// InvertToRecvPlan is the group-level form of BuildRecvPlan.
func InvertToRecvPlan(group transport.Group, plan *Plan) error {
	plan.Swap()
	err := InvertToSendPlan(group, plan)
	plan.Swap()
	return err
}

// Read implements §4.D.4: the gather operation. For every peer other than
// me, it packs the local elements named by plan.SendList into a send
// buffer, posts a persistent send to that peer (tag=me) and a persistent
// receive directly into out[recvOffsets[i]:recvOffsets[i+1]) (tag=i); the
// self slice is copied in-process without touching the transport. out must
// have length >= plan.RecvOffsets[P]. An empty plan returns immediately
// and leaves out untouched, per §4.D.4's failure semantics and scenario 6.
func (d *Directory[T]) Read(plan *Plan, out []T) error {
	if plan.BothEmpty() {
		return nil
	}
	me, p := d.group.Rank(), d.group.Size()
	if plan.P != p {
		return dderr.Invariant("read: plan sized for %d peers, group has %d", plan.P, p)
	}
	if len(plan.SendList) != plan.SendOffsets[p] {
		return dderr.Invariant("read: sendList length %d != sendOffsets total %d", len(plan.SendList), plan.SendOffsets[p])
	}
	if len(out) < plan.RecvOffsets[p] {
		return dderr.Invariant("read: out has length %d, need >= %d", len(out), plan.RecvOffsets[p])
	}

	sendTotal := len(plan.SendList)
	sendPayload := make([]T, sendTotal)
	for idx, local := range plan.SendList {
		if local < 0 || local >= len(d.data) {
			return dderr.Invariant("read: sendList entry %d out of range for local data of length %d", local, len(d.data))
		}
		sendPayload[idx] = d.data[local]
	}
	sendBytes := asBytes(sendPayload)
	sz := sizeOf[T]()

	sendReq := make([]*transport.Request, p)
	recvReq := make([]*transport.Request, p)
	for i := 0; i < p; i++ {
		if i == me {
			continue
		}
		slo, shi := plan.SendOffsets[i], plan.SendOffsets[i+1]
		if shi > slo {
			sendReq[i] = d.group.SendInit(sendBytes[slo*sz:shi*sz], i, me)
		}
		rlo, rhi := plan.RecvOffsets[i], plan.RecvOffsets[i+1]
		if rhi > rlo {
			recvReq[i] = d.group.RecvInit(asBytes(out[rlo:rhi]), i, i)
		}
	}
	for _, r := range sendReq {
		d.group.Start(r)
	}
	for _, r := range recvReq {
		d.group.Start(r)
	}
	for _, r := range sendReq {
		d.group.Wait(r)
	}
	for _, r := range recvReq {
		d.group.Wait(r)
	}
	for _, r := range sendReq {
		d.group.RequestFree(r)
	}
	for _, r := range recvReq {
		d.group.RequestFree(r)
	}

	slo, shi := plan.SendOffsets[me], plan.SendOffsets[me+1]
	rlo, rhi := plan.RecvOffsets[me], plan.RecvOffsets[me+1]
	if shi-slo != rhi-rlo {
		return dderr.Invariant("read: self slice size mismatch send=%d recv=%d", shi-slo, rhi-rlo)
	}
	for k := 0; k < shi-slo; k++ {
		out[rlo+k] = d.data[plan.SendList[slo+k]]
	}
	return nil
}

// ReadList is the completed form of §9's flagged `read(list,...)` overload:
// the source called listToPlan and stopped without ever issuing the
// gather. Here it runs the full sequence — build the receive-side plan
// from globalIDs, invert it, and gather — so the overload actually
// produces a result instead of silently doing nothing. out[i] is the
// element for globalIDs[i].
func (d *Directory[T]) ReadList(globalIDs []int) ([]T, error) {
	plan := d.ListToPlan(globalIDs)
	if err := d.BuildSendPlan(plan); err != nil {
		return nil, err
	}
	gathered := make([]T, len(globalIDs))
	if err := d.Read(plan, gathered); err != nil {
		return nil, err
	}
	// The plan groups ids by owner; walk globalIDs the way ListToPlan did
	// to put each element back at its id's position in globalIDs.
	cursor := make([]int, plan.P)
	copy(cursor, plan.RecvOffsets[:plan.P])
	out := make([]T, len(globalIDs))
	for i, id := range globalIDs {
		owner := d.rrmap.Pid(id)
		out[i] = gathered[cursor[owner]]
		cursor[owner]++
	}
	return out, nil
}

// Migrate implements §4.D.5: like Read, but the gathered elements replace
// the directory's local backing array instead of landing in a caller-owned
// buffer — the shape used when resizing or repartitioning a directory in
// place.
func (d *Directory[T]) Migrate(plan *Plan) error {
	newData := make([]T, plan.RecvOffsets[plan.P])
	if err := d.Read(plan, newData); err != nil {
		return err
	}
	d.data = newData
	return nil
}
