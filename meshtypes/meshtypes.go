// Package meshtypes defines the fixed-layout mesh entity records of §3:
// Node, Face, Cell, FaceLR, and PatchDescriptor. These are the element
// types a dd.Directory moves byte-for-byte and a store.Store persists, so
// every field here is a plain fixed-width value — no pointers, slices, or
// strings — matching §4.D.4's "store and in-memory layout must agree
// bit-for-bit" requirement.
package meshtypes

// Node is a mesh vertex: three floating-point coordinates in the fixed
// numeric type chosen per run (float64 here; the on-disk container tags
// its own width independently via dtype, see internal/store).
type Node struct {
	X, Y, Z float64
}

const (
	faceWidth     = 3 // bits: valence stored low (3 or 4 fits in 3 bits, leaves room to grow)
	faceValenceMask = (1 << faceWidth) - 1
)

// Face is a small fixed-capacity integer array of up to 4 node indices
// plus a bit-packed header whose low bits store the valence (3 or 4).
// Grounded on original_source/hum/types/face.hpp's `face<uintT>` record.
type Face struct {
	BField uint32
	NodeID [4]uint32
}

// NewFace builds a Face with the given valence (3 or 4) and node ids; ids
// beyond valence are left zero.
func NewFace(valence int, ids ...uint32) Face {
	if valence < 3 || valence > 4 {
		panic("meshtypes: face valence must be 3 or 4")
	}
	var f Face
	f.BField = uint32(valence) & faceValenceMask
	copy(f.NodeID[:valence], ids)
	return f
}

// Valence returns the number of node ids this face actually uses (3 or 4).
func (f Face) Valence() int { return int(f.BField & faceValenceMask) }

// Nodes returns the face's node ids, truncated to its valence.
func (f Face) Nodes() []uint32 { return f.NodeID[:f.Valence()] }

const cellFaceWidth = 6 // bits: low 6 bits hold the face count (<=6 faces)

// Cell is a small fixed-capacity integer array of up to 6 face indices
// plus a bit-packed header: the low 6 bits store the face count, the next
// 6 bits store one orientation sign bit per slot. Grounded on
// original_source/hum/types/cell.hpp's `cell<uintT>::{Add,AddL,AddR,
// operator<<,operator>>,Size}` — the debug std::cout calls in the
// original `Add` were left-over debugging output, dropped here as
// non-semantic; the `1-2*bit` sign convention in `operator>>` is kept
// exactly.
type Cell struct {
	BField  uint32
	FaceID  [6]uint32
}

// FaceCount returns the number of face ids stored so far (bits 0-5).
func (c Cell) FaceCount() int {
	mask := uint32((1 << cellFaceWidth) - 1)
	return int(c.BField & mask)
}

// AddFace appends faceID to the cell (mirrors AddL: append without
// touching the orientation bit for that slot).
func (c *Cell) AddFace(faceID uint32) {
	mask := uint32((1 << cellFaceWidth) - 1)
	n := c.BField & mask
	if int(n) >= len(c.FaceID) {
		panic("meshtypes: cell face capacity exceeded")
	}
	c.FaceID[n] = faceID
	c.BField = (c.BField &^ mask) | (n + 1)
}

// AddFaceWithOrientation appends faceID and records its orientation sign
// for the newly occupied slot (mirrors AddR, which appends then flips the
// sign bit for that slot via operator<<).
func (c *Cell) AddFaceWithOrientation(faceID uint32) {
	mask := uint32((1 << cellFaceWidth) - 1)
	n := c.BField & mask
	c.AddFace(faceID)
	c.flipOrientation(int(n))
}

func (c *Cell) flipOrientation(slot int) {
	pos := cellFaceWidth + slot
	c.BField ^= 1 << uint(pos)
}

// Orientation returns +1 or -1 for the given face slot, following the
// original's `1-2*bit` convention: a clear bit is +1 (this cell is the
// face's "left" owner), a set bit is -1 ("right" owner).
func (c Cell) Orientation(slot int) int {
	pos := cellFaceWidth + slot
	bit := (c.BField >> uint(pos)) & 1
	return 1 - 2*int(bit)
}

// SetOrientation sets the sign bit for slot directly, without appending a
// face.
func (c *Cell) SetOrientation(slot int, sign int) {
	pos := cellFaceWidth + slot
	if sign < 0 {
		c.BField |= 1 << uint(pos)
	} else {
		c.BField &^= 1 << uint(pos)
	}
}

// Faces returns the cell's face ids, truncated to its face count.
func (c Cell) Faces() []uint32 { return c.FaceID[:c.FaceCount()] }

// FaceLR is the (leftCell, rightCell) pair attached to every face.
// Boundary faces carry the sentinel 0 in Right once converted into the
// store's on-disk representation (the ASCII source uses a negative
// sentinel instead).
type FaceLR struct {
	Left, Right uint32
}

// IsBoundary reports whether Right holds the boundary sentinel 0; an
// internal face whose right-hand cell is cell 0 also reports true.
func (lr FaceLR) IsBoundary() bool { return lr.Right == 0 }

// PatchDescriptor names a contiguous boundary-face range with a boundary
// condition type and, once partitioned, the rank it is attached to.
// Grounded on original_source/hum/types/patch.hpp's `patchBC` record — the
// field order below is preserved exactly, matching that header's "do not
// change the ordering" comment in spirit.
type PatchDescriptor struct {
	BCType       int32
	StartFace    uint32
	FaceCount    uint32
	AttachedRank int32
}
