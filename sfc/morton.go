// Package sfc implements §4.F: Morton-key space-filling-curve locality
// reordering. Phase 1 computes a (key, globalId) tuple per entity from its
// coordinates or centroid; phase 2 stable-sorts by key, derives the
// permutation, and applies it in place with Knuth's cyclic algorithm.
// Grounded on original_source/hum/sfc.hpp's sfcFunctor for the bit-
// interleave constants and original_source/hum/sfc.hpp's
// InplacePermutation for the rewrite step.
package sfc

import "github.com/partmesh/dimm/utils"

// Bits selects the Morton key width: 10 bits per axis (fits in a uint32
// key) or 20 bits per axis (a uint64 key composed from two 10-bit codes).
type Bits int

const (
	// Bits10 normalises coordinates onto a 2^10 grid per axis.
	Bits10 Bits = 10
	// Bits20 normalises coordinates onto a 2^20 grid per axis.
	Bits20 Bits = 20
)

// morton10 interleaves three 10-bit coordinates into a 30-bit Morton code,
// using the "magic mask" widening sequence from the teacher's sfc.hpp
// (0x030000FF -> 0x0300F00F -> 0x030C30C3 -> 0x09249249), applied
// independently to x, y, and z before combining with x | y<<1 | z<<2.
func morton10(x, y, z uint32) uint32 {
	spread := func(v uint32) uint32 {
		v = (v | (v << 16)) & 0x030000FF
		v = (v | (v << 8)) & 0x0300F00F
		v = (v | (v << 4)) & 0x030C30C3
		v = (v | (v << 2)) & 0x09249249
		return v
	}
	return spread(x) | (spread(y) << 1) | (spread(z) << 2)
}

// morton20 composes a 60-bit Morton code from two 10-bit interleaves: the
// high 10 bits of each coordinate interleaved into the upper 30 bits, the
// low 10 bits interleaved into the lower 30 bits.
func morton20(x, y, z uint32) uint64 {
	loX, loY, loZ := x&1023, y&1023, z&1023
	hiX, hiY, hiZ := x>>10, y>>10, z>>10
	return uint64(morton10(hiX, hiY, hiZ))<<30 | uint64(morton10(loX, loY, loZ))
}

// gridCoord normalises v in [lo,hi] onto the integer grid [0, 2^bits - 1].
// A degenerate axis (hi - lo within the teacher's NODETOL tolerance of
// zero, e.g. a mesh flat along one axis) maps everything to 0 rather than
// dividing by a near-zero extent.
func gridCoord(v, lo, hi float64, bits Bits) uint32 {
	if hi-lo <= utils.NODETOL {
		return 0
	}
	scale := float64((uint64(1) << uint(bits)) - 1)
	g := (v - lo) / (hi - lo) * scale
	if g < 0 {
		g = 0
	}
	if g > scale {
		g = scale
	}
	return uint32(g)
}

// Key64 computes the Morton key for point (x,y,z) within bounding box
// [min,max], at the requested bit width. 10-bit keys are returned widened
// to uint64 so both widths share one key type through the rest of the
// package.
func Key64(x, y, z float64, min, max [3]float64, bits Bits) uint64 {
	gx := gridCoord(x, min[0], max[0], bits)
	gy := gridCoord(y, min[1], max[1], bits)
	gz := gridCoord(z, min[2], max[2], bits)
	if bits == Bits10 {
		return uint64(morton10(gx, gy, gz))
	}
	return morton20(gx, gy, gz)
}
