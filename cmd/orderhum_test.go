package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partmesh/dimm/DG3D/mesh"
	"github.com/partmesh/dimm/internal/importer"
	"github.com/partmesh/dimm/internal/store"
	"github.com/partmesh/dimm/meshtypes"
	"github.com/partmesh/dimm/sfc"
)

func buildTestStore(t *testing.T) string {
	t.Helper()
	m := &mesh.Mesh{
		Vertices: [][]float64{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1},
		},
		NumElements: 2,
		EToE: [][]int{
			{1, -1, -1, -1},
			{-1, -1, -1, -1},
		},
		Faces: []mesh.Face{
			{Vertices: []int{0, 1, 2}, Element: 0, LocalID: 0},
			{Vertices: []int{0, 1, 3}, Element: 0, LocalID: 1},
			{Vertices: []int{0, 2, 3}, Element: 0, LocalID: 2},
			{Vertices: []int{1, 2, 3}, Element: 0, LocalID: 3},
			{Vertices: []int{0, 1, 4}, Element: 1, LocalID: 1},
			{Vertices: []int{0, 4, 2}, Element: 1, LocalID: 2},
			{Vertices: []int{1, 4, 2}, Element: 1, LocalID: 3},
		},
	}
	path := filepath.Join(t.TempDir(), "store")
	require.NoError(t, importer.ImportMesh(m, path, importer.Options{}))
	return path
}

func TestRunOrderHumPreservesBoundarySentinel(t *testing.T) {
	path := buildTestStore(t)

	require.NoError(t, runOrderHum(path, true, true, sfc.Bits10, 0))

	s, err := store.Open(path, store.ReadOnly, nil)
	require.NoError(t, err)
	defer s.Close()

	faceLR := make([]meshtypes.FaceLR, s.NFace())
	require.NoError(t, store.ReadSlice(s, store.LinkFacesFaceLRCell, faceLR, 0, 1, s.NFace()))

	nInternal := s.NInternalFace()
	for i := nInternal; i < len(faceLR); i++ {
		assert.Truef(t, faceLR[i].IsBoundary(), "face %d should still carry the boundary sentinel after reorder", i)
	}
	for i := 0; i < nInternal; i++ {
		assert.False(t, faceLR[i].IsBoundary())
	}
}

func TestRunOrderHumNoOpWhenDisabled(t *testing.T) {
	path := buildTestStore(t)

	s, err := store.Open(path, store.ReadOnly, nil)
	require.NoError(t, err)
	before := make([]meshtypes.Node, s.NNode())
	require.NoError(t, store.ReadSlice(s, store.LinkNodesXYZ, before, 0, 1, s.NNode()))
	require.NoError(t, s.Close())

	require.NoError(t, runOrderHum(path, false, false, sfc.Bits10, 0))

	s2, err := store.Open(path, store.ReadOnly, nil)
	require.NoError(t, err)
	defer s2.Close()
	after := make([]meshtypes.Node, s2.NNode())
	require.NoError(t, store.ReadSlice(s2, store.LinkNodesXYZ, after, 0, 1, s2.NNode()))

	assert.Equal(t, before, after)
}
