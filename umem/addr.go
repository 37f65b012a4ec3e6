// File: umem/addr.go
// Package umem implements the frame pool and the packed frame-address
// encoding described in spec.md §3 and §4.1: a newtype around an
// unsigned 64-bit integer with constructor/accessor operations, per
// spec.md §9's design note.
//
// Grounded on the teacher's pool/ring.go padding/masking idiom
// (github.com/momentics/hioload-ws) and on original_source/src/xsknf.c's
// owner_shift bit-packing scheme, generalized from a single C file-scope
// global into a value carried by *Pool so multiple independent
// datapaths can coexist in one process (spec.md §9 "wrap it in a
// context handle rather than actual globals").
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import "math/bits"

// Addr is a frame address within a Pool. Its bit layout in aligned
// mode is:
//
//	| owner_id (high bits) | frame_id (log2(FramesPerSocket) bits) | in-frame offset (log2(frame_size) bits) |
//
// In unaligned mode the in-frame offset is not a bitfield: Addr still
// carries the raw byte offset into the pool's backing buffer, but
// OwnerOf recovers the owning socket from the frame's numeric range
// instead of a shift (see Pool.OwnerOf).
type Addr uint64

// log2PowerOfTwo returns log2(n) for a power-of-two n, or -1 if n is
// not a power of two.
func log2PowerOfTwo(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
