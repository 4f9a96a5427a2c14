package dd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partmesh/dimm/transport"
)

func TestBatchRoundTrip(t *testing.T) {
	const p = 2
	groups := transport.NewLocalGroup(p)

	var got [2]int32
	runOnAllRanks(groups, func(rank int, g *transport.LocalGroup) {
		b := NewBatch(g)
		Resize[int32](b, 1)
		peer := 1 - rank
		if rank == 0 {
			view := AsSend[int32](b)
			view[0] = 42
			b.Post(peer, 0, 4, rank, DirSend)
		} else {
			b.Post(peer, 0, 4, peer, DirRecv)
		}
		b.Start()
		b.Wait()
		if rank == 1 {
			got[rank] = AsRecv[int32](b)[0]
		}
		b.FreeReqs()
	})
	assert.Equal(t, int32(42), got[1])
}

// TestBatchFreeWithoutStart verifies §4.B's "a slot left posted but not
// started is legal; free must still release it."
func TestBatchFreeWithoutStart(t *testing.T) {
	groups := transport.NewLocalGroup(2)
	b := NewBatch(groups[0])
	Resize[int32](b, 4)
	b.Post(1, 0, 4, 0, DirSend)
	require.NotPanics(t, func() {
		b.FreeReqs()
	})
}

func TestBatchResizeToZeroClears(t *testing.T) {
	groups := transport.NewLocalGroup(1)
	b := NewBatch(groups[0])
	Resize[int32](b, 8)
	assert.Len(t, b.buf, 32)
	Resize[int32](b, 0)
	assert.Nil(t, b.buf)
}
