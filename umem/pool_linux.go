//go:build linux

// File: umem/pool_linux.go
// Linux mmap backing for Pool's frame buffer. A real zero-copy bind
// requires this memory to be page-aligned and locked before it is
// registered with the kernel via XDP_UMEM_REG (done in xsk.Socket); the
// allocation itself only needs MAP_ANONYMOUS|MAP_PRIVATE.
//
// Grounded on the PF_PACKET/TPACKET mmap'd-ring precedent in
// _examples/other_examples (pcap_linux.go, fdbased-mmap.go): both drive
// a kernel-shared ring purely through golang.org/x/sys/unix, with no
// cgo and no libbpf bindings, which is the same approach used here for
// the UMEM backing buffer. (umem/ring.go keeps its index words in
// process-local atomics, not in kernel-shared memory.)
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// RegisterUmem publishes this pool's backing buffer to the kernel via
// XDP_UMEM_REG on fd. Only the first socket created against a given
// pool should call this (spec.md §9's "two pools per worker": every
// other socket sharing that pool binds with XDP_SHARED_UMEM instead).
func (p *Pool) RegisterUmem(fd int) error {
	reg := unix.XDPUmemReg{
		Addr:     uint64(uintptr(unsafe.Pointer(&p.buffer[0]))),
		Len:      uint64(len(p.buffer)),
		Size:     uint32(p.frameSize),
		Headroom: 0,
	}
	return unix.SetsockoptXDPUmemReg(fd, unix.SOL_XDP, unix.XDP_UMEM_REG, &reg)
}

func mmapAnonymous(size int) ([]byte, error) {
	if size <= 0 {
		size = unix.Getpagesize()
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func munmap(b []byte) error {
	if b == nil {
		return nil
	}
	return unix.Munmap(b)
}
