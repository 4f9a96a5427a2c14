package dd

import "unsafe"

// asBytes reinterprets s's backing array as a byte slice without copying.
// §4.D.4 requires the store and the in-memory layout to "agree bit-for-bit,
// structure padding included", so the transport layer moves elements by
// raw byte copy rather than through a marshalling codec — the same
// contract §4.B's AsSend/AsRecv views document. T must be a fixed-layout
// value type (no pointers, no slices/maps/strings, no interfaces).
func asBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	sz := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*sz)
}

// fromBytes reinterprets b as a []T without copying. len(b) must be an
// exact multiple of sizeof(T); callers only ever slice exactly
// sendOffsets/recvOffsets-sized spans out of a buffer sized by resize, so
// this always holds in practice.
func fromBytes[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	sz := int(unsafe.Sizeof(zero))
	if len(b)%sz != 0 {
		panic("dd: byte slice length is not a multiple of element size")
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/sz)
}

// sizeOf returns sizeof(T) for the zero value of T.
func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}
