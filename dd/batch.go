package dd

import "github.com/partmesh/dimm/transport"

// Direction distinguishes a PersistentBatch slot's role.
type Direction int

const (
	// DirSend marks a slot as a persistent send request.
	DirSend Direction = iota
	// DirRecv marks a slot as a persistent receive request.
	DirRecv
)

// Batch is the PersistentBatch of §4.B: a fixed-size array of 2·P
// persistent request handles (P sends, P receives, one slot per peer) over
// a single shared byte buffer. The buffer backs both the send and receive
// views (AsSend/AsRecv, §9's resolution of the "hand-rolled MPI buffer
// aliasing" design note) — callers must not read and write the same byte
// range through both views inside one post/start/wait cycle.
type Batch struct {
	group transport.Group
	p     int

	buf []byte

	sendReq   []*transport.Request
	recvReq   []*transport.Request
	sendSlice [][]byte
	recvSlice [][]byte
}

// NewBatch allocates a Batch sized to group's rank count, with empty
// buffers and every slot null.
func NewBatch(group transport.Group) *Batch {
	p := group.Size()
	return &Batch{
		group:     group,
		p:         p,
		sendReq:   make([]*transport.Request, p),
		recvReq:   make([]*transport.Request, p),
		sendSlice: make([][]byte, p),
		recvSlice: make([][]byte, p),
	}
}

// Resize ensures the shared buffer holds at least n*sizeof(T) bytes.
// Resizing to zero releases the buffer entirely. Any outstanding requests
// must be freed first — a resize invalidates slices handed out by AsSend/
// AsRecv.
func Resize[T any](b *Batch, n int) {
	need := n * sizeOf[T]()
	if need == 0 {
		b.buf = nil
		return
	}
	if len(b.buf) < need {
		b.buf = make([]byte, need)
	} else {
		b.buf = b.buf[:need]
	}
}

// AsSend returns a typed view of b's shared buffer for use as a send
// payload.
func AsSend[T any](b *Batch) []T { return fromBytes[T](b.buf) }

// AsRecv returns a typed view of b's shared buffer for use as a receive
// destination. It aliases the same bytes AsSend sees; §4.B's contract is
// that within one batch a caller never both sends and receives through the
// same byte range in a single post/start/wait cycle.
func AsRecv[T any](b *Batch) []T { return fromBytes[T](b.buf) }

// Post installs a persistent send or receive request on peer's slot,
// bound to byte range [off,off+length) of the shared buffer, tagged tag.
// Idempotent: calling Post again on the same slot with the same
// parameters is a no-op; calling it with different parameters replaces
// the slot (the caller is expected to FreeReqs between phases that change
// peer topology).
func (b *Batch) Post(peer int, off, length, tag int, dir Direction) {
	slice := b.buf[off : off+length]
	switch dir {
	case DirSend:
		b.sendSlice[peer] = slice
		b.sendReq[peer] = b.group.SendInit(slice, peer, tag)
	case DirRecv:
		b.recvSlice[peer] = slice
		b.recvReq[peer] = b.group.RecvInit(slice, peer, tag)
	}
}

// Start (re)activates every non-null request in the batch.
func (b *Batch) Start() {
	for _, r := range b.sendReq {
		b.group.Start(r)
	}
	for _, r := range b.recvReq {
		b.group.Start(r)
	}
}

// Wait blocks until every non-null request in the batch completes.
// Requests remain reusable after Wait until FreeReqs releases them.
func (b *Batch) Wait() {
	for _, r := range b.sendReq {
		b.group.Wait(r)
	}
	for _, r := range b.recvReq {
		b.group.Wait(r)
	}
}

// FreeReqs releases every handle and resets all slots to null. A slot that
// was posted but never started is still released correctly.
func (b *Batch) FreeReqs() {
	for i, r := range b.sendReq {
		b.group.RequestFree(r)
		b.sendReq[i] = nil
		b.sendSlice[i] = nil
	}
	for i, r := range b.recvReq {
		b.group.RequestFree(r)
		b.recvReq[i] = nil
		b.recvSlice[i] = nil
	}
}

// Close waits on every outstanding request then frees the batch, matching
// §4.B's "destructor must wait then freeReqs" lifecycle rule. Call this
// before dropping a Batch.
func (b *Batch) Close() {
	b.Wait()
	b.FreeReqs()
}
