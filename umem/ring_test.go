// File: umem/ring_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingReserveSubmitPeekRelease(t *testing.T) {
	r := NewRing[uint64](8)

	idx, got := r.Reserve(4)
	require.Equal(t, uint32(4), got)
	for i := uint32(0); i < got; i++ {
		*r.At(idx + i) = uint64(i + 1)
	}
	r.Submit(got)

	pidx, pgot := r.Peek(10)
	require.Equal(t, uint32(4), pgot)
	for i := uint32(0); i < pgot; i++ {
		require.Equal(t, uint64(i+1), *r.At(pidx+i))
	}
	r.Release(pgot)

	require.Equal(t, uint32(0), r.Pending())
}

func TestRingReserveSaturatesAtFree(t *testing.T) {
	r := NewRing[uint64](4)

	_, got := r.Reserve(10)
	require.Equalf(t, uint32(4), got, "Reserve(10) on empty size-4 ring")
	r.Submit(got)

	// ring is now full: a fresh producer-side Reserve must report zero room
	_, got2 := r.Reserve(1)
	require.Equal(t, uint32(0), got2)

	// consumer drains two, freeing exactly two slots
	_, cgot := r.Peek(2)
	require.Equal(t, uint32(2), cgot)
	r.Release(cgot)

	_, got3 := r.Reserve(10)
	require.Equalf(t, uint32(2), got3, "Reserve(10) after releasing 2")
}

func TestRingPeekEmpty(t *testing.T) {
	r := NewRing[uint64](8)
	_, got := r.Peek(5)
	require.Equal(t, uint32(0), got)
}

func TestRingWrapsAroundMask(t *testing.T) {
	r := NewRing[uint64](4)

	// cycle through the ring three times to exercise index wraparound
	for round := 0; round < 3; round++ {
		idx, got := r.Reserve(4)
		require.Equalf(t, uint32(4), got, "round %d Reserve(4)", round)
		for i := uint32(0); i < 4; i++ {
			*r.At(idx + i) = uint64(round*10 + int(i))
		}
		r.Submit(4)

		pidx, pgot := r.Peek(4)
		require.Equalf(t, uint32(4), pgot, "round %d Peek(4)", round)
		for i := uint32(0); i < 4; i++ {
			want := uint64(round*10 + int(i))
			require.Equalf(t, want, *r.At(pidx+i), "round %d At(%d)", round, pidx+i)
		}
		r.Release(4)
	}
}
