package utils

import (
	"github.com/james-bowman/sparse"
)

// DOK wraps james-bowman/sparse's dictionary-of-keys matrix, the mutable
// form adjacency is built into one entry at a time before compaction to CSR.
type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) DOK {
	return DOK{M: sparse.NewDOK(nr, nc)}
}

func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }

// ToCSR compacts the DOK into the read-optimized CSR form adjacency caches
// are persisted and read back as.
func (m DOK) ToCSR() CSR {
	return CSR{M: m.M.ToCSR()}
}

// CSR wraps james-bowman/sparse's compressed-sparse-row matrix, the form
// adjacency.go persists to and reads from the store's cache links.
type CSR struct {
	M *sparse.CSR
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
