package store

import (
	"encoding/binary"
	"os"

	"github.com/partmesh/dimm/dderr"
	"github.com/partmesh/dimm/meshtypes"
	"github.com/partmesh/dimm/utils"
)

// adjEntry is one (row, col) incidence of a cell/face or cell/cell
// adjacency, serialized verbatim into the cache files named by §6's
// optional Cache/cellFace and Cache/cellCell groups. Caching the triplets
// directly — rather than a particular sparse.CSR on-disk layout — keeps
// the cache format stable across whatever internal representation
// james-bowman/sparse uses.
type adjEntry struct {
	Row, Col uint32
}

// BuildCellFaceAdjacency builds the cell→face incidence matrix from
// local faceLR connectivity as a james-bowman/sparse CSR matrix (teacher
// dependency, grounded on utils.DOK/utils.CSR in utils/sparse.go): row is
// a local cell index, column a local face index, value 1 wherever the
// cell touches the face on either side. A face is internal by position
// (i < nInternalFaces), not by whether Right happens to be nonzero - cell
// id 0 is a legal right-neighbor on an internal face.
func BuildCellFaceAdjacency(faceLR []meshtypes.FaceLR, nCell, nFace, nInternalFaces int) utils.CSR {
	dok := utils.NewDOK(nCell, nFace)
	for i, lr := range faceLR {
		dok.M.Set(int(lr.Left), i, 1)
		if i < nInternalFaces {
			dok.M.Set(int(lr.Right), i, 1)
		}
	}
	return dok.ToCSR()
}

// BuildCellCellAdjacency builds the cell→cell adjacency matrix: two cells
// are adjacent iff they share an internal face.
func BuildCellCellAdjacency(faceLR []meshtypes.FaceLR, nInternalFaces, nCell int) utils.CSR {
	dok := utils.NewDOK(nCell, nCell)
	for i := 0; i < nInternalFaces; i++ {
		lr := faceLR[i]
		dok.M.Set(int(lr.Left), int(lr.Right), 1)
		dok.M.Set(int(lr.Right), int(lr.Left), 1)
	}
	return dok.ToCSR()
}

// csrEntries walks every nonzero of csr and returns its (row,col) pairs,
// for persisting to a cache file.
func csrEntries(csr utils.CSR) []adjEntry {
	nr, nc := csr.Dims()
	var entries []adjEntry
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if csr.At(i, j) != 0 {
				entries = append(entries, adjEntry{Row: uint32(i), Col: uint32(j)})
			}
		}
	}
	return entries
}

// WriteAdjacencyCache persists csr's nonzero structure to link (one of
// LinkCacheCellFace / LinkCacheCellCell).
func (s *Store) WriteAdjacencyCache(link Link, csr utils.CSR) error {
	if err := s.checkWritable("WriteAdjacencyCache"); err != nil {
		return err
	}
	path, err := s.linkPath(link)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return dderr.StoreIO("WriteAdjacencyCache: create", err)
	}
	defer f.Close()

	entries := csrEntries(csr)
	nr, nc := csr.Dims()
	header := [3]uint32{uint32(nr), uint32(nc), uint32(len(entries))}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return dderr.StoreIO("WriteAdjacencyCache: header", err)
	}
	for _, e := range entries {
		if err := binary.Write(f, binary.LittleEndian, e); err != nil {
			return dderr.StoreIO("WriteAdjacencyCache: entry", err)
		}
	}
	return nil
}

// ReadAdjacencyCache loads a previously written adjacency cache, rebuilt
// as a james-bowman/sparse CSR matrix. ok is false when the cache group
// is absent, per §6's "when present, read directly; when absent, build".
func (s *Store) ReadAdjacencyCache(link Link) (csr utils.CSR, ok bool, err error) {
	path, lerr := s.linkPath(link)
	if lerr != nil {
		return utils.CSR{}, false, lerr
	}
	f, oerr := os.Open(path)
	if os.IsNotExist(oerr) {
		return utils.CSR{}, false, nil
	}
	if oerr != nil {
		return utils.CSR{}, false, dderr.StoreIO("ReadAdjacencyCache: open", oerr)
	}
	defer f.Close()

	var header [3]uint32
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return utils.CSR{}, false, dderr.StoreIO("ReadAdjacencyCache: header", err)
	}
	nr, nc, count := int(header[0]), int(header[1]), int(header[2])
	dok := utils.NewDOK(nr, nc)
	for i := 0; i < count; i++ {
		var e adjEntry
		if err := binary.Read(f, binary.LittleEndian, &e); err != nil {
			return utils.CSR{}, false, dderr.StoreIO("ReadAdjacencyCache: entry", err)
		}
		dok.M.Set(int(e.Row), int(e.Col), 1)
	}
	return dok.ToCSR(), true, nil
}
