// File: umem/addr_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xskframe/xskframe/api"
)

func TestEncodeOwnerOfAligned(t *testing.T) {
	p, err := NewPool(2048, 4, false, api.BindZeroCopy)
	require.NoError(t, err)
	defer p.Close()

	for socket := 0; socket < 4; socket++ {
		for _, frameID := range []int{0, 1, api.FramesPerSocket - 1} {
			addr := p.Encode(socket, frameID, 0)
			require.Equalf(t, socket, p.OwnerOf(addr), "OwnerOf(Encode(%d,%d,0))", socket, frameID)
		}
	}
}

func TestEncodeOwnerOfUnaligned(t *testing.T) {
	p, err := NewPool(2048, 3, true, api.BindCopy)
	require.NoError(t, err)
	defer p.Close()

	for socket := 0; socket < 3; socket++ {
		addr := p.Encode(socket, 7, 128)
		require.Equal(t, socket, p.OwnerOf(addr))
	}
}

func TestStripOffsetAndSplitUnalignedAgree(t *testing.T) {
	p, err := NewPool(4096, 2, false, api.BindZeroCopy)
	require.NoError(t, err)
	defer p.Close()

	addr := p.Encode(1, 10, 200)
	stripped := p.StripOffset(addr)
	base, offset := p.SplitUnaligned(addr)
	require.Equal(t, stripped, base)
	require.Equal(t, uint64(200), offset)
}

func TestFreeFramesExhaustsOwnedSlab(t *testing.T) {
	p, err := NewPool(2048, 2, false, api.BindZeroCopy)
	require.NoError(t, err)
	defer p.Close()

	all := p.FreeFrames(0, api.FramesPerSocket+10)
	require.Len(t, all, api.FramesPerSocket)
	for _, a := range all {
		require.Equalf(t, 0, p.OwnerOf(a), "FreeFrames(0, ...) returned a frame owned by another socket")
	}

	// the socket-1 slab must be untouched and fully available
	rest := p.FreeFrames(1, api.FramesPerSocket)
	require.Lenf(t, rest, api.FramesPerSocket, "no cross-socket leak")
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int]bool{0: false, 1: true, 2: true, 3: false, 2048: true, 4095: false, 4096: true}
	for n, want := range cases {
		require.Equalf(t, want, IsPowerOfTwo(n), "IsPowerOfTwo(%d)", n)
	}
}
