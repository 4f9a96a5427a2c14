package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partmesh/dimm/dtype"
	"github.com/partmesh/dimm/meshtypes"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")
	s, err := Open(dir, Create, nil)
	require.NoError(t, err)
	return s, dir
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	s, path := newTestStore(t)

	nodes := []meshtypes.Node{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}
	require.NoError(t, WriteSlice(s, LinkNodesXYZ, nodes, 0, 1, len(nodes), len(nodes)))
	require.NoError(t, s.SetIndexType(dtype.Uint32))
	require.NoError(t, s.SetCounts(len(nodes), 0, 0, 0, 0))
	require.NoError(t, s.SetBoundingBox([3]float64{0, 0, 0}, [3]float64{1, 1, 0}))
	require.NoError(t, s.Close())

	reopened, err := Open(path, ReadOnly, nil)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, len(nodes), reopened.NNode())
	assert.Equal(t, dtype.Uint32, reopened.Attrs().IndexType())

	got := make([]meshtypes.Node, len(nodes))
	require.NoError(t, ReadSlice(reopened, LinkNodesXYZ, got, 0, 1, len(nodes)))
	assert.Equal(t, nodes, got)

	min, max := reopened.Attrs().Min, reopened.Attrs().Max
	assert.Equal(t, [3]float64{0, 0, 0}, min)
	assert.Equal(t, [3]float64{1, 1, 0}, max)
}

func TestStoreReadByList(t *testing.T) {
	s, path := newTestStore(t)
	nodes := make([]meshtypes.Node, 10)
	for i := range nodes {
		nodes[i] = meshtypes.Node{X: float64(i), Y: float64(i), Z: float64(i)}
	}
	require.NoError(t, WriteSlice(s, LinkNodesXYZ, nodes, 0, 1, len(nodes), len(nodes)))
	require.NoError(t, s.SetCounts(len(nodes), 0, 0, 0, 0))
	require.NoError(t, s.Close())

	reopened, err := Open(path, ReadOnly, nil)
	require.NoError(t, err)
	defer reopened.Close()

	idList := []int{9, 0, 5, 5}
	out := make([]meshtypes.Node, len(idList))
	require.NoError(t, ReadByList(reopened, LinkNodesXYZ, out, idList))
	assert.Equal(t, nodes[9], out[0])
	assert.Equal(t, nodes[0], out[1])
	assert.Equal(t, nodes[5], out[2])
	assert.Equal(t, nodes[5], out[3])
}

func TestStoreReadOnlyRejectsWrite(t *testing.T) {
	_, path := newTestStore(t)
	s, err := Open(path, ReadOnly, nil)
	require.NoError(t, err)
	defer s.Close()

	err = WriteSlice(s, LinkNodesXYZ, []meshtypes.Node{{}}, 0, 1, 1, 1)
	assert.Error(t, err)
}

func TestStoreOpenCreateRejectsExisting(t *testing.T) {
	_, path := newTestStore(t)
	_, err := Open(path, Create, nil)
	assert.Error(t, err)
}

func TestStorePatchRoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	desc := meshtypes.PatchDescriptor{BCType: 3, StartFace: 10, FaceCount: 5, AttachedRank: -1}
	require.NoError(t, s.WritePatch("inlet", desc))
	require.NoError(t, s.WritePatch("outlet", meshtypes.PatchDescriptor{BCType: 4, StartFace: 15, FaceCount: 2, AttachedRank: -1}))
	require.NoError(t, s.Close())

	reopened, err := Open(path, ReadWrite, nil)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"inlet", "outlet"}, reopened.PatchNames())
	got, err := reopened.ReadPatch("inlet")
	require.NoError(t, err)
	assert.Equal(t, desc, got)
}

func TestStoreAdjacencyCacheRoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	// A tiny two-cell mesh sharing one internal face plus one boundary face
	// on each cell: faceLR[0] is internal (cells 0 and 1), faceLR[1] and
	// faceLR[2] are boundary (Right sentinel 0).
	faceLR := []meshtypes.FaceLR{
		{Left: 0, Right: 1},
		{Left: 0, Right: 0},
		{Left: 1, Right: 0},
	}
	const nCell, nInternal = 2, 1
	cellFace := BuildCellFaceAdjacency(faceLR, nCell, len(faceLR), nInternal)
	require.NoError(t, s.WriteAdjacencyCache(LinkCacheCellFace, cellFace))
	cellCell := BuildCellCellAdjacency(faceLR, nInternal, nCell)
	require.NoError(t, s.WriteAdjacencyCache(LinkCacheCellCell, cellCell))
	require.NoError(t, s.Close())

	reopened, err := Open(path, ReadOnly, nil)
	require.NoError(t, err)
	defer reopened.Close()

	gotCellFace, ok, err := reopened.ReadAdjacencyCache(LinkCacheCellFace)
	require.NoError(t, err)
	require.True(t, ok)
	r, c := gotCellFace.Dims()
	assert.Equal(t, nCell, r)
	assert.Equal(t, len(faceLR), c)

	gotCellCell, ok, err := reopened.ReadAdjacencyCache(LinkCacheCellCell)
	require.NoError(t, err)
	require.True(t, ok)
	r, c = gotCellCell.Dims()
	assert.Equal(t, nCell, r)
	assert.Equal(t, nCell, c)
}

// TestBuildCellFaceAdjacencyInternalFaceWithZeroRight covers the case the
// round-trip test above can't: an internal face whose Right cell id happens
// to be 0. Whether a face is internal is positional (its index is below
// nInternalFaces), not a property of Right being nonzero, so cell 0 must
// still get its incidence recorded.
func TestBuildCellFaceAdjacencyInternalFaceWithZeroRight(t *testing.T) {
	faceLR := []meshtypes.FaceLR{
		{Left: 1, Right: 0}, // internal (index 0 < nInternalFaces): 0 is a real neighbor
		{Left: 0, Right: 0}, // boundary: Right is a sentinel, not a neighbor
		{Left: 1, Right: 0}, // boundary: Right is a sentinel, not a neighbor
	}
	const nCell, nInternal = 2, 1

	cellFace := BuildCellFaceAdjacency(faceLR, nCell, len(faceLR), nInternal)
	entries := csrEntries(cellFace)

	assert.Contains(t, entries, adjEntry{Row: 0, Col: 0})
	assert.Contains(t, entries, adjEntry{Row: 1, Col: 0})
	assert.Contains(t, entries, adjEntry{Row: 0, Col: 1})
	assert.Contains(t, entries, adjEntry{Row: 1, Col: 2})
	assert.Len(t, entries, 4)
}

func TestReadAttributeRoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, WriteAttribute(s, "Title", "test-mesh"))
	require.NoError(t, s.Close())

	reopened, err := Open(path, ReadOnly, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := ReadAttribute[string](reopened, "Title")
	require.NoError(t, err)
	assert.Equal(t, "test-mesh", got)

	_, err = ReadAttribute[string](reopened, "Missing")
	assert.Error(t, err)
}
