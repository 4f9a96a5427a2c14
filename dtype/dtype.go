// Package dtype describes the byte-level shape of the element types moved
// through a CommPlan or stored in a TypedBlockStore dataset, so the store
// adapter and the transport layer can do hyperslab-style transfers without
// every layer above them re-deriving width/signedness from a Go type
// parameter.
package dtype

// Kind distinguishes the broad numeric family of a descriptor.
type Kind uint8

const (
	// Unsigned marks an unsigned integer descriptor (node/face/cell ids,
	// bField headers).
	Unsigned Kind = iota
	// Signed marks a signed integer descriptor.
	Signed
	// Float marks an IEEE-754 floating point descriptor.
	Float
)

// Descriptor is the minimal metadata needed to move or lay out a record
// field: its width in bytes and whether it is signed, unsigned, or
// floating point. IntegerT in the on-disk container's root attributes is
// a Descriptor serialized as a single byte (width<<2 | kind).
type Descriptor struct {
	Width int
	Kind  Kind
}

// Uint32, Uint64, Int32, Int64, Float32, and Float64 are the descriptors
// this repo actually uses: 32/64-bit indices (IntegerT) and 32/64-bit
// floating coordinates.
var (
	Uint32  = Descriptor{Width: 4, Kind: Unsigned}
	Uint64  = Descriptor{Width: 8, Kind: Unsigned}
	Int32   = Descriptor{Width: 4, Kind: Signed}
	Int64   = Descriptor{Width: 8, Kind: Signed}
	Float32 = Descriptor{Width: 4, Kind: Float}
	Float64 = Descriptor{Width: 8, Kind: Float}
)

// Tag encodes a Descriptor into the single-byte IntegerT form the store's
// root attribute uses.
func (d Descriptor) Tag() byte {
	return byte(d.Width)<<2 | byte(d.Kind)
}

// FromTag decodes a Descriptor from an IntegerT byte.
func FromTag(tag byte) Descriptor {
	return Descriptor{Width: int(tag >> 2), Kind: Kind(tag & 0x3)}
}

// Index is the constraint satisfied by global/local index types used
// throughout the DD layer: the spec's `uintT`.
type Index interface {
	~uint32 | ~uint64
}
