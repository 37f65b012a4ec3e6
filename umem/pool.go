// File: umem/pool.go
// Pool is the frame pool described in spec.md §4.1: a slab of
// FramesPerSocket-sized reservations per socket, carved out of one
// mmap'd backing buffer, with an address-encoding scheme that lets a
// worker recover a frame's owning socket from the bare address handed
// back by the kernel.
//
// Grounded on original_source/src/xsknf.c's xsknf_init (UMEM creation,
// owner_shift computation via FRAMES_PER_SOCKET_SHIFT + ffs(frame_size)-1)
// and on the teacher's pool/bufferpool.go size-classed allocation idiom
// (github.com/momentics/hioload-ws), generalized from NUMA-node keys to
// (worker, bind-mode) keys since spec.md §9 calls for "two pools per
// worker" rather than one pool per NUMA node.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import (
	"github.com/xskframe/xskframe/api"
)

// Pool owns one mmap'd backing buffer shared by up to api.FramesPerSocket
// frames for each of nSockets sockets bound to it. A *worker.Worker*
// creates at most two Pools (one per distinct bind-mode among its
// sockets, spec.md §9), never more.
type Pool struct {
	frameSize   int
	framesPer   int // FramesPerSocket, copied in for test substitution
	nSockets    int
	unaligned   bool
	bindMode    api.BindMode
	ownerShift  uint // 0 when unaligned
	offsetBits  uint // 0 when unaligned
	buffer      []byte
	freeList    []Addr // initial free-frame addresses, consumed by fill-queue pre-fill
}

// NewPool allocates a backing buffer sized for nSockets*FramesPerSocket
// frames of frameSize bytes each, and precomputes the address-encoding
// shift amounts. frameSize must be a power of two unless unaligned is
// set (spec.md §4.1, ErrBadFrameSize is the caller's responsibility to
// raise before reaching here).
func NewPool(frameSize, nSockets int, unaligned bool, bindMode api.BindMode) (*Pool, error) {
	if nSockets <= 0 {
		return nil, api.NewError(api.ErrCodeConfiguration, api.ErrBadWorkerCount)
	}
	if !unaligned && !IsPowerOfTwo(frameSize) {
		return nil, api.NewError(api.ErrCodeConfiguration, api.ErrBadFrameSize)
	}

	p := &Pool{
		frameSize: frameSize,
		framesPer: api.FramesPerSocket,
		nSockets:  nSockets,
		unaligned: unaligned,
		bindMode:  bindMode,
	}

	if !unaligned {
		offsetBits := log2PowerOfTwo(frameSize)
		framesPerBits := log2PowerOfTwo(api.FramesPerSocket)
		if offsetBits < 0 || framesPerBits < 0 {
			return nil, api.NewError(api.ErrCodeConfiguration, api.ErrBadFrameSize)
		}
		p.offsetBits = uint(offsetBits)
		p.ownerShift = uint(framesPerBits) + uint(offsetBits)
	}

	total := nSockets * api.FramesPerSocket * frameSize
	buf, err := mmapAnonymous(total)
	if err != nil {
		return nil, api.NewError(api.ErrCodeResourceAllocation, api.ErrFailedAlloc).WithContext("size", total).WithContext("err", err)
	}
	p.buffer = buf

	p.freeList = make([]Addr, 0, nSockets*api.FramesPerSocket)
	for s := 0; s < nSockets; s++ {
		for f := 0; f < api.FramesPerSocket; f++ {
			p.freeList = append(p.freeList, p.Encode(s, f, 0))
		}
	}

	return p, nil
}

// BindMode reports which kind of socket this pool backs.
func (p *Pool) BindMode() api.BindMode { return p.bindMode }

// FrameSize is the configured per-frame byte capacity.
func (p *Pool) FrameSize() int { return p.frameSize }

// Unaligned reports whether this pool uses the numeric-range ownership
// fallback instead of bitfield packing.
func (p *Pool) Unaligned() bool { return p.unaligned }

// FreeFrames returns (and consumes) up to n addresses for a socket's
// initial fill-queue pre-fill, restricted to frames owned by socketIdx.
// Used once at socket creation; spec.md §4.2 "pre-fill the FQ with every
// frame in the socket's slab".
func (p *Pool) FreeFrames(socketIdx int, n int) []Addr {
	out := make([]Addr, 0, n)
	kept := p.freeList[:0]
	for _, a := range p.freeList {
		if len(out) < n && int(p.OwnerOf(a)) == socketIdx {
			out = append(out, a)
			continue
		}
		kept = append(kept, a)
	}
	p.freeList = kept
	return out
}

// Encode packs a (socketIdx, frameID, offset) triple into a frame
// address. In aligned mode this is a pure bitfield pack; in unaligned
// mode frameID/offset are folded into a flat byte position and
// ownership is recovered later from the numeric frame range (OwnerOf).
func (p *Pool) Encode(socketIdx, frameID int, offset uint64) Addr {
	if p.unaligned {
		frameGlobal := uint64(socketIdx)*uint64(p.framesPer) + uint64(frameID)
		return Addr(frameGlobal*uint64(p.frameSize) + offset)
	}
	return Addr(uint64(socketIdx)<<p.ownerShift | uint64(frameID)<<p.offsetBits | offset)
}

// OwnerOf recovers the owning socket index from a frame address handed
// back by the kernel (e.g. in a completion or RX descriptor).
func (p *Pool) OwnerOf(addr Addr) int {
	if p.unaligned {
		frameGlobal := uint64(addr) / uint64(p.frameSize)
		return int(frameGlobal / uint64(p.framesPer))
	}
	return int(uint64(addr) >> p.ownerShift)
}

// StripOffset returns addr with its in-frame offset cleared, i.e. the
// address of the frame's first byte (spec.md §4.1).
func (p *Pool) StripOffset(addr Addr) Addr {
	fs := uint64(p.frameSize)
	a := uint64(addr)
	return Addr(a - a%fs)
}

// SplitUnaligned returns the frame-start address and the in-frame byte
// offset for addr, computed from the frame's numeric range rather than
// a bitfield shift (spec.md §9's unaligned-chunk fallback). Valid in
// both aligned and unaligned pools; in aligned mode it agrees with
// StripOffset/offsetBits by construction.
func (p *Pool) SplitUnaligned(addr Addr) (frameBase Addr, offset uint64) {
	fs := uint64(p.frameSize)
	a := uint64(addr)
	base := a - a%fs
	return Addr(base), a - base
}

// PacketBytes returns the slice of the backing buffer holding length
// bytes starting at addr. addr is the exact packet-data start recorded
// in a descriptor (it may already carry in-frame headroom), so this
// does not strip the offset -- see DESIGN.md for why strip_offset is
// not on this path.
func (p *Pool) PacketBytes(addr Addr, length int) []byte {
	start := int(addr)
	return p.buffer[start : start+length]
}

// FrameBytes returns the full frameSize-byte frame backing addr,
// aligned to its frame start. Nothing in the datapath loop calls it;
// cross-pool forwarding copies via PacketBytes.
func (p *Pool) FrameBytes(addr Addr) []byte {
	base := int(p.StripOffset(addr))
	return p.buffer[base : base+p.frameSize]
}

// Close releases the backing mmap. Safe to call more than once.
func (p *Pool) Close() error {
	if p.buffer == nil {
		return nil
	}
	err := munmap(p.buffer)
	p.buffer = nil
	return err
}
