// Package importer implements the MeshImporter collaborator §1 names as
// external: converting a source ASCII/binary mesh into the on-disk
// container internal/store consumes. No cobalt grammar exists anywhere in
// the retrieval pack, so SPEC_FULL generalizes cobaltToHum's role onto the
// teacher's three existing mesh readers (DG3D/mesh's Gambit neutral, Gmsh,
// and SU2 parsers) — any one of them produces the same node/face/cell/
// patch records this package writes into a store.
package importer

import (
	"fmt"
	"os"

	"github.com/partmesh/dimm/DG3D/mesh"
	"github.com/partmesh/dimm/dtype"
	"github.com/partmesh/dimm/internal/store"
	"github.com/partmesh/dimm/meshtypes"
	"github.com/partmesh/dimm/sfc"
)

// Options mirrors cobaltToHum's flags (§6): BufSizeGB carries the `-s`
// value, which ImportMesh does not read (each dataset is written with a
// single WriteSlice call), and WideIndex selects the `-L` 64-bit index
// type tag.
type Options struct {
	BufSizeGB float64
	WideIndex bool
}

// ImportFile reads the mesh at srcPath (.neu, .msh, or .su2, dispatched
// by mesh.ReadMeshFile) and writes a fresh TypedBlockStore directory at
// storePath.
func ImportFile(srcPath, storePath string, opts Options) error {
	m, err := mesh.ReadMeshFile(srcPath)
	if err != nil {
		return fmt.Errorf("importer: read %s: %w", srcPath, err)
	}
	m.BuildConnectivity()
	return ImportMesh(m, storePath, opts)
}

// ImportMesh converts an already-parsed teacher Mesh into a store.
func ImportMesh(m *mesh.Mesh, storePath string, opts Options) error {
	s, err := store.Open(storePath, store.Create, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	nodes := convertNodes(m)
	faceLR, faces, nInternal, patches, err := convertFaces(m)
	if err != nil {
		return err
	}

	idxType := dtype.Uint32
	if opts.WideIndex {
		idxType = dtype.Uint64
	}
	if err := s.SetIndexType(idxType); err != nil {
		return err
	}

	if err := store.WriteSlice(s, store.LinkNodesXYZ, nodes, 0, 1, len(nodes), len(nodes)); err != nil {
		return err
	}
	if err := store.WriteSlice(s, store.LinkFacesEntityID, faces, 0, 1, len(faces), len(faces)); err != nil {
		return err
	}
	if err := store.WriteSlice(s, store.LinkFacesFaceLRCell, faceLR, 0, 1, len(faceLR), len(faceLR)); err != nil {
		return err
	}
	for _, p := range patches {
		if err := s.WritePatch(p.name, p.desc); err != nil {
			return err
		}
	}

	points := make([][3]float64, len(nodes))
	for i, n := range nodes {
		points[i] = [3]float64{n.X, n.Y, n.Z}
	}
	min, max := sfc.BoundingBox(points)
	if err := s.SetBoundingBox(min, max); err != nil {
		return err
	}

	faceAdjncySize := 2*nInternal + (len(faces) - nInternal)
	if err := s.SetCounts(len(nodes), len(faces), m.NumElements, nInternal, faceAdjncySize); err != nil {
		return err
	}

	cellFace := store.BuildCellFaceAdjacency(faceLR, m.NumElements, len(faces), nInternal)
	if err := s.WriteAdjacencyCache(store.LinkCacheCellFace, cellFace); err != nil {
		return err
	}
	cellCell := store.BuildCellCellAdjacency(faceLR, nInternal, m.NumElements)
	if err := s.WriteAdjacencyCache(store.LinkCacheCellCell, cellCell); err != nil {
		return err
	}
	reportImportSummary(m, len(faces), nInternal)
	return nil
}

// reportImportSummary prints the one-line-per-count banner a completed
// import leaves behind: node/face/cell counts, the internal/boundary face
// split, and a per-element-type histogram, the store-oriented successor to
// the teacher's Mesh.PrintStatistics (dropped in favor of this, since the
// store — not the parsed Mesh — is this package's unit of record).
func reportImportSummary(m *mesh.Mesh, nFace, nInternal int) {
	fmt.Fprintf(os.Stderr, "importer: %d nodes, %d cells, %d faces (%d internal, %d boundary)\n",
		m.NumVertices, m.NumElements, nFace, nInternal, nFace-nInternal)

	typeCounts := make(map[mesh.ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	for t, count := range typeCounts {
		fmt.Fprintf(os.Stderr, "importer:   %s: %d\n", t, count)
	}
}

func convertNodes(m *mesh.Mesh) []meshtypes.Node {
	nodes := make([]meshtypes.Node, len(m.Vertices))
	for i, v := range m.Vertices {
		nodes[i] = meshtypes.Node{X: v[0], Y: v[1], Z: v[2]}
	}
	return nodes
}

type patchEntry struct {
	name string
	desc meshtypes.PatchDescriptor
}

// convertFaces walks the teacher's unique face list (built by
// BuildConnectivity) and emits it reordered internal-faces-first, then
// boundary faces, per §3's FaceLR/PatchDescriptor layout: a boundary
// face's owning element has no neighbour across EToE (-1), so its Right
// field becomes the sentinel 0. The teacher's BoundaryTags is keyed by
// physical-group id on elements, not on individual boundary faces, so
// there is no per-face tag to recover here; every boundary face is
// grouped into a single contiguous "boundary" patch.
func convertFaces(m *mesh.Mesh) (faceLR []meshtypes.FaceLR, faces []meshtypes.Face, nInternal int, patches []patchEntry, err error) {
	type rec struct {
		lr   meshtypes.FaceLR
		face meshtypes.Face
	}
	var internalRecs, boundaryRecs []rec
	for _, f := range m.Faces {
		valence := len(f.Vertices)
		if valence < 3 || valence > 4 {
			return nil, nil, 0, nil, fmt.Errorf("importer: face with %d vertices unsupported (valence must be 3 or 4)", valence)
		}
		ids := make([]uint32, valence)
		for i, v := range f.Vertices {
			ids[i] = uint32(v)
		}
		face := meshtypes.NewFace(valence, ids...)

		left := f.Element
		right := m.EToE[f.Element][f.LocalID]
		if right >= 0 {
			internalRecs = append(internalRecs, rec{meshtypes.FaceLR{Left: uint32(left), Right: uint32(right)}, face})
		} else {
			boundaryRecs = append(boundaryRecs, rec{meshtypes.FaceLR{Left: uint32(left), Right: 0}, face})
		}
	}

	total := len(internalRecs) + len(boundaryRecs)
	faceLR = make([]meshtypes.FaceLR, 0, total)
	faces = make([]meshtypes.Face, 0, total)
	for _, r := range internalRecs {
		faceLR = append(faceLR, r.lr)
		faces = append(faces, r.face)
	}
	startBoundary := len(internalRecs)
	for _, r := range boundaryRecs {
		faceLR = append(faceLR, r.lr)
		faces = append(faces, r.face)
	}

	if len(boundaryRecs) > 0 {
		patches = append(patches, patchEntry{
			name: "boundary",
			desc: meshtypes.PatchDescriptor{
				BCType:       0,
				StartFace:    uint32(startBoundary),
				FaceCount:    uint32(len(boundaryRecs)),
				AttachedRank: -1,
			},
		})
	}
	return faceLR, faces, len(internalRecs), patches, nil
}
