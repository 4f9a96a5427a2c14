package sfc

import "sort"

// KeyedID pairs a Morton key with the global id of the entity it was
// computed from, the sfc.IdKey<T,uintT> of the teacher's header.
type KeyedID struct {
	Key uint64
	ID  int
}

// SortKeyed stable-sorts keys by Key, breaking ties by ID — the tie-break
// §4.F requires so the permutation is deterministic regardless of input
// order. No parallel-sort library exists anywhere in the retrieval pack
// (the teacher's own numeric stack, gonum, does not offer one either), so
// this stays on stdlib sort.Slice — justified in DESIGN.md.
func SortKeyed(keys []KeyedID) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Key != keys[j].Key {
			return keys[i].Key < keys[j].Key
		}
		return keys[i].ID < keys[j].ID
	})
}

// PermFromKeys derives iperm[old]=new and perm[new]=old from a Key-sorted
// slice of KeyedID, matching §4.F phase 2: keys[newPos].ID is the old id
// that now lives at newPos.
func PermFromKeys(keys []KeyedID) (perm, iperm []int) {
	n := len(keys)
	perm = make([]int, n)
	iperm = make([]int, n)
	for newPos, k := range keys {
		perm[newPos] = k.ID
		iperm[k.ID] = newPos
	}
	return perm, iperm
}

// InPlacePermute rewrites data so that data[i] becomes the value
// originally at data[perm[i]], using O(1) extra space beyond one element
// and the perm slice itself as cycle-tracking scratch — Knuth's TAOCP V3
// in-place permutation algorithm, as implemented by
// original_source/hum/sfc.hpp's InplacePermutation. perm is consumed: it
// is left holding the identity permutation when this returns.
func InPlacePermute[T any](data []T, perm []int) {
	n := len(data)
	for i := 0; i < n; i++ {
		if i == perm[i] {
			continue
		}
		temp := data[i]
		j := i
		for i != perm[j] {
			k := perm[j]
			data[j] = data[k]
			perm[j] = j
			j = k
		}
		data[j] = temp
		perm[j] = j
	}
}

// InPlacePermute2 is the two-array overload of InPlacePermute, for
// permuting two parallel slices (e.g. a node array and an id-tag array)
// together in one pass.
func InPlacePermute2[T1, T2 any](data1 []T1, data2 []T2, perm []int) {
	n := len(data1)
	for i := 0; i < n; i++ {
		if i == perm[i] {
			continue
		}
		temp1, temp2 := data1[i], data2[i]
		j := i
		for i != perm[j] {
			k := perm[j]
			data1[j] = data1[k]
			data2[j] = data2[k]
			perm[j] = j
			j = k
		}
		data1[j] = temp1
		data2[j] = temp2
		perm[j] = j
	}
}

// RewriteIDs rewrites every id in ids through iperm (new = iperm[old]),
// e.g. a face's NodeID array or a FaceLR's Left/Right fields after the
// referenced entity kind has been reordered, per invariant 5 of §3.
func RewriteIDs(ids []uint32, iperm []int) {
	for i, id := range ids {
		ids[i] = uint32(iperm[int(id)])
	}
}
