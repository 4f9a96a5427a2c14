package sfc

import (
	"gonum.org/v1/gonum/floats"

	"github.com/partmesh/dimm/internal/workerpool"
	"github.com/partmesh/dimm/meshtypes"
)

// BoundingBox returns the axis-aligned [min,max] box over a set of points,
// using gonum/floats.Min and floats.Max the way the teacher's numeric code favours a
// library reduction over a hand-rolled loop (grounded on the teacher's
// pervasive gonum use, per SPEC_FULL's domain-stack wiring).
func BoundingBox(points [][3]float64) (min, max [3]float64) {
	for axis := 0; axis < 3; axis++ {
		col := make([]float64, len(points))
		for i, p := range points {
			col[i] = p[axis]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		min[axis], max[axis] = lo, hi
	}
	return min, max
}

// NodeKeys computes a (key, globalId) tuple per node — §4.F phase 1 — for
// nodes already living at local index i = globalId - localStart.
func NodeKeys(nodes []meshtypes.Node, localStart int, min, max [3]float64, bits Bits) []KeyedID {
	keys := make([]KeyedID, len(nodes))
	for i, n := range nodes {
		keys[i] = KeyedID{Key: Key64(n.X, n.Y, n.Z, min, max, bits), ID: localStart + i}
	}
	return keys
}

// ReorderNodes implements the node-reorder half of §4.F end to end on a
// single rank's local slice: compute keys, sort, derive perm/iperm, permute
// nodes in place. Callers needing cross-rank connectivity rewrites use the
// returned iperm with RewriteIDs on every face's NodeID array.
func ReorderNodes(nodes []meshtypes.Node, localStart int, bits Bits) (perm, iperm []int) {
	return ReorderNodesParallel(nodes, localStart, bits, 1)
}

// ReorderNodesParallel is ReorderNodes with §5's optional worker-local
// data parallelism for phase 1's key compute: the node slice is split into
// workers block ranges (workerpool.Map, grounded on the teacher's
// per-partition goroutine dispatch) each computing its own keys
// concurrently. Phase 2 (sort + in-place permute) stays sequential — §5
// only permits parallelism in "SFC key compute", and the permutation pass
// mutates the whole array in one interleaved sweep that does not
// decompose into independent block ranges. workers<=1 runs fully
// sequentially with no goroutines, identical to ReorderNodes.
func ReorderNodesParallel(nodes []meshtypes.Node, localStart int, bits Bits, workers int) (perm, iperm []int) {
	points := make([][3]float64, len(nodes))
	for i, n := range nodes {
		points[i] = [3]float64{n.X, n.Y, n.Z}
	}
	min, max := BoundingBox(points)
	keys := make([]KeyedID, len(nodes))
	workerpool.Map(len(nodes), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			keys[i] = KeyedID{Key: Key64(nodes[i].X, nodes[i].Y, nodes[i].Z, min, max, bits), ID: localStart + i}
		}
	})
	SortKeyed(keys)
	perm, iperm = PermFromKeys(keys)

	permCopy := append([]int(nil), perm...)
	InPlacePermute(nodes, permCopy)
	return perm, iperm
}

// FaceCentroid averages a face's node coordinates, looked up by NodeID
// through nodeAt (a closure over whatever storage holds the node array —
// local slice, cross-rank gather, or store cursor).
func FaceCentroid(f meshtypes.Face, nodeAt func(id uint32) meshtypes.Node) [3]float64 {
	var sx, sy, sz float64
	ids := f.Nodes()
	for _, id := range ids {
		n := nodeAt(id)
		sx += n.X
		sy += n.Y
		sz += n.Z
	}
	k := float64(len(ids))
	return [3]float64{sx / k, sy / k, sz / k}
}

// CellCentroids computes each local cell's centroid as the mean of its
// touching faces' centroids, streaming over every face (internal and
// patch) exactly once and accumulating into the cells it touches — the
// cell-reorder variant of §4.F. faceOwner maps a face's Left/Right cell id
// to (localCellIndex, ok) when that cell is locally owned; faceCentroid
// supplies each face's precomputed centroid (typically from FaceCentroid).
func CellCentroids(faceLR []meshtypes.FaceLR, nInternalFaces int, faceCentroid func(faceIdx int) [3]float64, localCellIndex func(cellID uint32) (int, bool), nLocalCells int) [][3]float64 {
	sums := make([][3]float64, nLocalCells)
	counts := make([]int, nLocalCells)

	accumulate := func(cellID uint32, c [3]float64) {
		if idx, ok := localCellIndex(cellID); ok {
			sums[idx][0] += c[0]
			sums[idx][1] += c[1]
			sums[idx][2] += c[2]
			counts[idx]++
		}
	}

	for i, lr := range faceLR {
		c := faceCentroid(i)
		accumulate(lr.Left, c)
		if i < nInternalFaces {
			accumulate(lr.Right, c)
		}
	}

	centroids := make([][3]float64, nLocalCells)
	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		n := float64(counts[i])
		centroids[i] = [3]float64{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
	}
	return centroids
}

// ReorderCells is the cell-reorder half of §4.F: given precomputed
// centroids (from CellCentroids) it keys, sorts, and permutes cells in
// place, and returns perm/iperm so FaceLR arrays can be renumbered through
// the cell iperm.
func ReorderCells(cells []meshtypes.Cell, centroids [][3]float64, localStart int, bits Bits) (perm, iperm []int) {
	return ReorderCellsParallel(cells, centroids, localStart, bits, 1)
}

// ReorderCellsParallel is ReorderCells with the same block-range parallel
// key compute as ReorderNodesParallel.
func ReorderCellsParallel(cells []meshtypes.Cell, centroids [][3]float64, localStart int, bits Bits, workers int) (perm, iperm []int) {
	perm, iperm = CellKeyPermutation(centroids, localStart, bits, workers)
	permCopy := append([]int(nil), perm...)
	InPlacePermute(cells, permCopy)
	return perm, iperm
}

// CellKeyPermutation computes Morton keys from cell centroids and derives
// the perm/iperm pair without physically permuting any cell array. §6's
// on-disk container carries no standalone per-cell dataset — a cell is
// implicit in FaceLR's Left/Right ids, not its own record — so "cell
// reorder" against the reference store adapter produces only the
// renumbering, applied to FaceLR by RewriteFaceLR; ReorderCellsParallel
// builds on this for callers that do hold a concrete []meshtypes.Cell
// array to permute alongside it.
func CellKeyPermutation(centroids [][3]float64, localStart int, bits Bits, workers int) (perm, iperm []int) {
	min, max := BoundingBox(centroids)
	keys := make([]KeyedID, len(centroids))
	workerpool.Map(len(centroids), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			c := centroids[i]
			keys[i] = KeyedID{Key: Key64(c[0], c[1], c[2], min, max, bits), ID: localStart + i}
		}
	})
	SortKeyed(keys)
	return PermFromKeys(keys)
}

// RewriteFaceLR renumbers every FaceLR entry's Left/Right fields through
// a cell iperm, implementing invariant 5 of §3 for the face↔cell
// connectivity array. Right is left untouched for boundary faces (index
// >= nInternalFaces): §3 defines Right there as the sentinel 0, not a
// cell reference, so rewriting it through iperm would corrupt the
// sentinel with whatever cell 0 happens to be renumbered to.
func RewriteFaceLR(faceLR []meshtypes.FaceLR, nInternalFaces int, iperm []int) {
	for i := range faceLR {
		faceLR[i].Left = uint32(iperm[int(faceLR[i].Left)])
		if i < nInternalFaces {
			faceLR[i].Right = uint32(iperm[int(faceLR[i].Right)])
		}
	}
}

// ByLeftRightBucket is the non-Morton face ordering heuristic from
// original_source/hum/types/face.hpp's faceReorderObject: faces are
// bucketed by |left-right| (a cheap locality proxy — faces whose two
// owning cells are numerically close tend to be spatially close too), and
// within a bucket ordered by min(left,right). It is a cheaper pre-pass
// usable when full Morton reordering is skipped.
func ByLeftRightBucket(faceLR []meshtypes.FaceLR, bucketSize uint32) func(i, j int) bool {
	bucket := func(lr meshtypes.FaceLR) uint32 {
		d := int64(lr.Left) - int64(lr.Right)
		if d < 0 {
			d = -d
		}
		return uint32(d) / bucketSize
	}
	minLR := func(lr meshtypes.FaceLR) uint32 {
		if lr.Left < lr.Right {
			return lr.Left
		}
		return lr.Right
	}
	return func(i, j int) bool {
		bi, bj := bucket(faceLR[i]), bucket(faceLR[j])
		if bi != bj {
			return bi < bj
		}
		return minLR(faceLR[i]) < minLR(faceLR[j])
	}
}
