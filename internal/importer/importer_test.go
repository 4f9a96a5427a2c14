package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partmesh/dimm/DG3D/mesh"
	"github.com/partmesh/dimm/internal/store"
)

// twoTetMesh builds a tiny two-element mesh by hand (skipping
// mesh.ReadMeshFile's file parsing): element 0 and element 1 share one
// triangular face, each element's other three faces are boundary faces.
func twoTetMesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: [][]float64{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
			{1, 1, 1},
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
	return m
}

func TestImportMeshWritesStore(t *testing.T) {
	m := twoTetMesh()
	storePath := filepath.Join(t.TempDir(), "store")

	require.NoError(t, ImportMesh(m, storePath, Options{}))

	s, err := store.Open(storePath, store.ReadOnly, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 5, s.NNode())
	assert.Equal(t, 7, s.NFace())
	assert.Equal(t, 2, s.NCell())
	assert.Equal(t, 1, s.NInternalFace())

	assert.Equal(t, []string{"boundary"}, s.PatchNames())
	patch, err := s.ReadPatch("boundary")
	require.NoError(t, err)
	assert.EqualValues(t, 1, patch.StartFace)
	assert.EqualValues(t, 6, patch.FaceCount)
}

func TestImportMeshRejectsBadValence(t *testing.T) {
	m := twoTetMesh()
	m.Faces[0].Vertices = []int{0, 1}
	storePath := filepath.Join(t.TempDir(), "store")
	err := ImportMesh(m, storePath, Options{})
	assert.Error(t, err)
}

func TestImportMeshWideIndex(t *testing.T) {
	m := twoTetMesh()
	storePath := filepath.Join(t.TempDir(), "store")
	require.NoError(t, ImportMesh(m, storePath, Options{WideIndex: true}))

	s, err := store.Open(storePath, store.ReadOnly, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.EqualValues(t, 8, s.Attrs().IndexType().Width)
}
