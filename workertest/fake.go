// File: workertest/fake.go
// Package workertest provides an in-memory Handle implementation so
// the worker and datapath packages can be tested without a real NIC or
// AF_XDP-capable kernel. FakeSocket plays both roles a real socket
// splits between user-space and kernel: the worker-facing Handle
// methods, and test-only helpers (Deliver, DrainTx) that stand in for
// "the kernel" producing RX packets and consuming TX descriptors.
//
// Adapted from the teacher's fake/ package
// (github.com/momentics/hioload-ws), which plays the same role for its
// transport/reactor contracts.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package workertest

import (
	"errors"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/umem"
	"github.com/xskframe/xskframe/xsk"
)

const (
	fqSize = 4096
	cqSize = 2048
	rxSize = 2048
	txSize = 2048
)

var _ xsk.Handle = (*FakeSocket)(nil)

// FakeSocket implements xsk.Handle entirely in user-space memory.
type FakeSocket struct {
	ifaceIdx int
	bindMode api.BindMode
	pool     *umem.Pool

	fq *umem.Ring[umem.Addr]
	cq *umem.Ring[umem.Addr]
	rx *umem.Ring[xsk.Desc]
	tx *umem.Ring[xsk.Desc]

	counters xsk.Counters

	fqNeedWakeup bool
	txNeedWakeup bool
	kicks        int
	rxPokes      int
	closed       bool
}

// NewFakeSocket builds a FakeSocket bound to ifaceIdx within pool, and
// pre-fills its fill ring exactly as a real socket would at bind time.
func NewFakeSocket(pool *umem.Pool, ifaceIdx int, bindMode api.BindMode) (*FakeSocket, error) {
	s := &FakeSocket{
		ifaceIdx:     ifaceIdx,
		bindMode:     bindMode,
		pool:         pool,
		fq:           umem.NewRing[umem.Addr](fqSize),
		cq:           umem.NewRing[umem.Addr](cqSize),
		rx:           umem.NewRing[xsk.Desc](rxSize),
		tx:           umem.NewRing[xsk.Desc](txSize),
		fqNeedWakeup: true,
		txNeedWakeup: true,
	}
	frames := pool.FreeFrames(ifaceIdx, api.FramesPerSocket)
	idx, got := s.fq.Reserve(uint32(len(frames)))
	if int(got) != len(frames) {
		return nil, errors.New("workertest: short fill-ring reserve on fresh socket")
	}
	for i, addr := range frames {
		*s.fq.At(idx + uint32(i)) = addr
	}
	s.fq.Submit(got)
	return s, nil
}

func (s *FakeSocket) IfaceIndex() int         { return s.ifaceIdx }
func (s *FakeSocket) BindMode() api.BindMode  { return s.bindMode }
func (s *FakeSocket) Pool() *umem.Pool        { return s.pool }
func (s *FakeSocket) Counters() *xsk.Counters { return &s.counters }

func (s *FakeSocket) ReserveFill(n uint32) (uint32, uint32) { return s.fq.Reserve(n) }
func (s *FakeSocket) SetFill(idx uint32, addr umem.Addr)    { *s.fq.At(idx) = addr }
func (s *FakeSocket) SubmitFill(n uint32)                   { s.fq.Submit(n) }

func (s *FakeSocket) PeekCompletion(n uint32) (uint32, uint32) { return s.cq.Peek(n) }
func (s *FakeSocket) GetCompletion(idx uint32) umem.Addr       { return *s.cq.At(idx) }
func (s *FakeSocket) ReleaseCompletion(n uint32)               { s.cq.Release(n) }

func (s *FakeSocket) PeekRx(n uint32) (uint32, uint32) { return s.rx.Peek(n) }
func (s *FakeSocket) GetRx(idx uint32) xsk.Desc        { return *s.rx.At(idx) }
func (s *FakeSocket) ReleaseRx(n uint32)               { s.rx.Release(n) }

func (s *FakeSocket) ReserveTx(n uint32) (uint32, uint32) { return s.tx.Reserve(n) }
func (s *FakeSocket) SetTx(idx uint32, d xsk.Desc)        { *s.tx.At(idx) = d }
func (s *FakeSocket) SubmitTx(n uint32)                   { s.tx.Submit(n) }
func (s *FakeSocket) OutstandingTx() uint32               { return s.counters.OutstandingTx() }

func (s *FakeSocket) FQNeedsWakeup() bool { return s.fqNeedWakeup }
func (s *FakeSocket) TXNeedsWakeup() bool { return s.txNeedWakeup }

// SetNeedWakeup lets a test drive the two kernel wakeup flags
// independently, simulating a zero-copy socket that does (or does not)
// need a manual kick on either ring.
func (s *FakeSocket) SetNeedWakeup(fq, tx bool) {
	s.fqNeedWakeup = fq
	s.txNeedWakeup = tx
}

func (s *FakeSocket) Kick() error   { s.kicks++; return nil }
func (s *FakeSocket) Kicks() int    { return s.kicks }
func (s *FakeSocket) PokeRx() error { s.rxPokes++; return nil }
func (s *FakeSocket) RxPokes() int  { return s.rxPokes }

func (s *FakeSocket) Stats() (api.Stats, error) {
	return s.counters.Snapshot(api.Stats{}), nil
}

func (s *FakeSocket) Fd() int      { return -1 }
func (s *FakeSocket) Close() error { s.closed = true; return nil }
func (s *FakeSocket) Closed() bool { return s.closed }

// Deliver stands in for "the kernel received a packet": it takes a
// frame from the fill ring (exactly as a real NIC driver would),
// copies payload into it, and publishes it on the RX ring. Returns
// false if the fill ring has no frame available (RxFillEmptyNpkts in
// a real socket).
func (s *FakeSocket) Deliver(payload []byte) bool {
	fidx, fgot := s.fq.Peek(1)
	if fgot == 0 {
		return false
	}
	addr := *s.fq.At(fidx)
	s.fq.Release(1)

	dst := s.pool.PacketBytes(addr, len(payload))
	copy(dst, payload)

	idx, got := s.rx.Reserve(1)
	if got == 0 {
		return false
	}
	*s.rx.At(idx) = xsk.Desc{Addr: addr, Len: uint32(len(payload))}
	s.rx.Submit(1)
	return true
}

// DeliverWithOffset behaves like Deliver but places payload starting
// offset bytes into the reserved frame, simulating a receive that
// left headroom before the packet data (e.g. a reserved L2 header).
// Used to exercise the in-frame-offset path of cross-pool forwarding,
// which a zero-offset Deliver can never reach.
func (s *FakeSocket) DeliverWithOffset(payload []byte, offset uint64) bool {
	fidx, fgot := s.fq.Peek(1)
	if fgot == 0 {
		return false
	}
	base := *s.fq.At(fidx)
	s.fq.Release(1)

	addr := umem.Addr(uint64(base) + offset)
	dst := s.pool.PacketBytes(addr, len(payload))
	copy(dst, payload)

	idx, got := s.rx.Reserve(1)
	if got == 0 {
		return false
	}
	*s.rx.At(idx) = xsk.Desc{Addr: addr, Len: uint32(len(payload))}
	s.rx.Submit(1)
	return true
}

// DrainTx stands in for "the kernel transmitted it": it consumes
// every outstanding TX descriptor and pushes its address onto the
// completion ring, exactly as original_source/src/xsknf.c's
// complete_tx expects to observe after a successful transmit.
func (s *FakeSocket) DrainTx() int {
	idx, got := s.tx.Peek(s.tx.Size())
	if got == 0 {
		return 0
	}
	cidx, cgot := s.cq.Reserve(got)
	n := cgot
	for i := uint32(0); i < n; i++ {
		d := *s.tx.At(idx + i)
		*s.cq.At(cidx + i) = d.Addr
	}
	s.cq.Submit(n)
	s.tx.Release(n)
	return int(n)
}

// RxPending returns the number of RX descriptors awaiting consumption.
func (s *FakeSocket) RxPending() uint32 { return s.rx.Pending() }
