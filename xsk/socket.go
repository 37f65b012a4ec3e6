// File: xsk/socket.go
// Socket is the real, Linux AF_XDP-backed implementation of Handle.
// Ring creation, UMEM registration, and bind sequencing follow
// original_source/src/xsknf.c's xsk_configure_socket exactly: register
// the UMEM once per pool, size the fill ring at >=2x the RX ring and
// the completion ring at >=1x the TX ring, pre-fill the FQ with the
// socket's entire frame slab, then bind.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import (
	"fmt"
	"sync/atomic"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/umem"
)

// needWakeupBit mirrors the kernel's XDP_RING_NEED_WAKEUP flag bit
// (include/uapi/linux/if_xdp.h, value 1). Defined locally rather than
// referencing golang.org/x/sys/unix's copy so this file, shared by
// every platform's Handle implementation, doesn't need a Linux-only
// constant.
const needWakeupBit uint32 = 1

// Handle is the subset of socket operations the worker package needs
// to drive the datapath loop. Socket (real, Linux) and the workertest
// package's fake implementation both satisfy it, so worker logic can
// be tested without a kernel AF_XDP facility.
type Handle interface {
	// IfaceIndex is this socket's position in the worker's interface
	// list (spec.md's rx_interface_idx / to_fill[owner] bucket key).
	IfaceIndex() int
	BindMode() api.BindMode
	Pool() *umem.Pool

	// ReserveFill/SubmitFill hand frame addresses to the kernel for RX.
	ReserveFill(n uint32) (idx uint32, got uint32)
	SetFill(idx uint32, addr umem.Addr)
	SubmitFill(n uint32)

	// PeekCompletion/ReleaseCompletion drain TX completions.
	PeekCompletion(n uint32) (idx uint32, got uint32)
	GetCompletion(idx uint32) umem.Addr
	ReleaseCompletion(n uint32)

	// PeekRx/ReleaseRx consume received packets.
	PeekRx(n uint32) (idx uint32, got uint32)
	GetRx(idx uint32) Desc
	ReleaseRx(n uint32)

	// ReserveTx/SetTx/SubmitTx enqueue packets for transmission.
	ReserveTx(n uint32) (idx uint32, got uint32)
	SetTx(idx uint32, d Desc)
	SubmitTx(n uint32)
	OutstandingTx() uint32

	// FQNeedsWakeup reports whether the kernel asked for an explicit
	// wakeup before it will consume more fill-ring entries
	// (XDP_RING_NEED_WAKEUP on the fill ring). Gates the RX-empty-poll
	// path, spec.md §4.3 Step B.2.
	FQNeedsWakeup() bool
	// TXNeedsWakeup reports the same flag on the TX ring, gating the
	// manual sendto() kick, spec.md §4.6. The two flags are
	// independent: a socket can need a TX kick without its fill ring
	// being starved, or vice versa.
	TXNeedsWakeup() bool
	// Kick issues the zero-byte sendto wake-up, tolerating the
	// transient errno set named in spec.md §4.6.
	Kick() error
	// PokeRx issues the non-blocking zero-byte recvfrom that prompts
	// the kernel to refill the RX ring when FQNeedsWakeup is set,
	// spec.md §4.3 Step B.2.
	PokeRx() error

	Counters() *Counters
	Stats() (api.Stats, error)

	Fd() int
	Close() error
}

// socketCore holds the ring state and Handle bookkeeping (address
// recycling, counters) embedded by this package's Socket on every
// platform. workertest.FakeSocket does not embed it and keeps its own
// copy of the same state.
type socketCore struct {
	ifaceIdx int
	bindMode api.BindMode
	pool     *umem.Pool

	fq *umem.Ring[umem.Addr]
	cq *umem.Ring[umem.Addr]
	rx *umem.Ring[Desc]
	tx *umem.Ring[Desc]

	// fqFlags/txFlags point at the kernel-shared flags word inside the
	// fill/TX ring's mmap'd region (set by the real Linux backend; nil
	// on platforms with no kernel ring behind them, in which case the
	// corresponding NeedsWakeup call reports false).
	fqFlags *uint32
	txFlags *uint32

	counters Counters
}

func (s *socketCore) FQNeedsWakeup() bool {
	if s.fqFlags == nil {
		return false
	}
	return atomic.LoadUint32(s.fqFlags)&needWakeupBit != 0
}

func (s *socketCore) TXNeedsWakeup() bool {
	if s.txFlags == nil {
		return false
	}
	return atomic.LoadUint32(s.txFlags)&needWakeupBit != 0
}

func (s *socketCore) IfaceIndex() int        { return s.ifaceIdx }
func (s *socketCore) BindMode() api.BindMode { return s.bindMode }
func (s *socketCore) Pool() *umem.Pool       { return s.pool }
func (s *socketCore) Counters() *Counters    { return &s.counters }

func (s *socketCore) ReserveFill(n uint32) (uint32, uint32) { return s.fq.Reserve(n) }
func (s *socketCore) SetFill(idx uint32, addr umem.Addr)    { *s.fq.At(idx) = addr }
func (s *socketCore) SubmitFill(n uint32)                   { s.fq.Submit(n) }

func (s *socketCore) PeekCompletion(n uint32) (uint32, uint32) { return s.cq.Peek(n) }
func (s *socketCore) GetCompletion(idx uint32) umem.Addr       { return *s.cq.At(idx) }
func (s *socketCore) ReleaseCompletion(n uint32)               { s.cq.Release(n) }

func (s *socketCore) PeekRx(n uint32) (uint32, uint32) { return s.rx.Peek(n) }
func (s *socketCore) GetRx(idx uint32) Desc            { return *s.rx.At(idx) }
func (s *socketCore) ReleaseRx(n uint32)               { s.rx.Release(n) }

func (s *socketCore) ReserveTx(n uint32) (uint32, uint32) { return s.tx.Reserve(n) }
func (s *socketCore) SetTx(idx uint32, d Desc)            { *s.tx.At(idx) = d }
func (s *socketCore) SubmitTx(n uint32)                   { s.tx.Submit(n) }
func (s *socketCore) OutstandingTx() uint32               { return s.counters.OutstandingTx() }

// prefillFQ hands every frame in the socket's owned slab to the fill
// ring, per spec.md §4.2 "pre-fill the FQ with every frame in the
// socket's slab" and original_source/src/xsknf.c's xsk_populate_fill_ring.
func prefillFQ(core *socketCore) error {
	frames := core.pool.FreeFrames(core.ifaceIdx, api.FramesPerSocket)
	idx, got := core.fq.Reserve(uint32(len(frames)))
	if int(got) != len(frames) {
		return api.NewError(api.ErrCodeRingInvariant, api.ErrShortReserveOnFreshRing).
			WithContext("want", len(frames)).WithContext("got", got)
	}
	for i, addr := range frames {
		*core.fq.At(idx + uint32(i)) = addr
	}
	core.fq.Submit(got)
	return nil
}

// ringSizes returns the fixed fill/completion/RX/TX ring capacities,
// enforcing spec.md §4.2's "FQ >= 2x RX size, CQ >= TX size" rule. Ring sizes must be powers of two (the kernel
// ring protocol requirement, and umem.Ring's requirement); a fixed,
// generous size independent of BatchSize keeps the invariant true
// regardless of how small BatchSize is configured.
func ringSizes() (fq, cq, rx, tx uint32) {
	const rxTxSize = 2048
	return rxTxSize * 2, rxTxSize, rxTxSize, rxTxSize
}

func fmtRingErr(op string, err error) error {
	return fmt.Errorf("xsk: %s: %w", op, err)
}
