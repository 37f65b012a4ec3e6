// File: worker/worker.go
// Worker drives the multi-interface datapath loop (spec.md §4.3) and
// its single-interface specialization (§4.4) over a fixed set of
// xsk.Handle sockets, calling a user api.PacketProcessor per received
// packet.
//
// Grounded step-by-step on original_source/src/xsknf.c's process_batch /
// complete_tx (multi-interface) and process_batch_1if / complete_tx_1if
// (single-interface), translated from C's stack-allocated
// variable-length arrays into fixed-capacity arrays sized
// api.MaxBatchSize, since Go has no VLA equivalent and the original's
// own comment already documents an 8-bit counter ceiling.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/umem"
	"github.com/xskframe/xskframe/xsk"
)

// Worker owns a fixed set of sockets, one per configured interface, and
// runs the scheduling/datapath loop on a single pinned goroutine.
type Worker struct {
	ID        int
	Sockets   []xsk.Handle
	Processor api.PacketProcessor
	BatchSize uint32

	PollEnabled bool // conf.poll: use poll() before each batch
	BusyPoll    bool // conf.busy_poll: kernel busy-polls, skip manual kicks

	// scratch buffers, reused across iterations to avoid per-batch
	// allocation -- the Go analogue of the original's stack VLAs.
	toDrop [api.MaxBatchSize]xsk.Desc
	toTx   [][api.MaxBatchSize]xsk.Desc // indexed by destination interface
	ntx    []uint8

	// completion-recycle scratch, indexed by owning interface; reused
	// across completeTxMulti calls to avoid a per-call MaxBatchSize^2
	// allocation (the original's to_fill VLA is sized by the real
	// interface count, not a worst-case constant).
	compToFill [][api.MaxBatchSize]uint64
	compNfill  []uint8
}

// New builds a Worker over sockets, indexed identically to the
// process-wide interface list (sockets[i].IfaceIndex() == i is an
// invariant Init must establish).
func New(id int, sockets []xsk.Handle, processor api.PacketProcessor, batchSize uint32) *Worker {
	if batchSize == 0 || batchSize > api.MaxBatchSize {
		batchSize = api.MaxBatchSize
	}
	w := &Worker{
		ID:         id,
		Sockets:    sockets,
		Processor:  processor,
		BatchSize:  batchSize,
		toTx:       make([][api.MaxBatchSize]xsk.Desc, len(sockets)),
		ntx:        make([]uint8, len(sockets)),
		compToFill: make([][api.MaxBatchSize]uint64, len(sockets)),
		compNfill:  make([]uint8, len(sockets)),
	}
	return w
}

// ProcessOnce advances every interface by one batch. With exactly one
// socket it dispatches to the single-interface specialization (no
// cross-interface bookkeeping overhead); with more than one, to the
// multi-interface path. Mirrors worker_loop's own dispatch in
// original_source/src/xsknf.c.
func (w *Worker) ProcessOnce() {
	if len(w.Sockets) == 1 {
		w.processBatch1if(w.Sockets[0])
		return
	}
	for i := range w.Sockets {
		w.processBatchMulti(i)
	}
}

// needsManualKick reports whether the TX ring requires an explicit
// sendto() wakeup: true for COPY-mode sockets always, and for
// zero-copy sockets only when neither poll() nor busy-poll is active
// and the kernel has set XDP_RING_NEED_WAKEUP (spec.md §4.6).
func (w *Worker) needsManualKick(s xsk.Handle) bool {
	if s.BindMode() == api.BindCopy {
		return true
	}
	return !w.PollEnabled && !w.BusyPoll && s.TXNeedsWakeup()
}

// completeTxMulti drains up to BatchSize TX completions for
// sockets[ifaceIdx], buckets each freed frame by owning socket, and
// refills every owner's fill queue. Step A of spec.md §4.3.
func (w *Worker) completeTxMulti(ifaceIdx int) {
	s := w.Sockets[ifaceIdx]
	outstanding := s.OutstandingTx()
	if outstanding == 0 {
		return
	}

	if w.needsManualKick(s) {
		s.Counters().AddTxTriggerSendto()
		_ = s.Kick()
	}

	n := w.BatchSize
	if outstanding < n {
		n = outstanding
	}

	idx, sent := s.PeekCompletion(n)
	if sent == 0 {
		return
	}

	for i := range w.compNfill {
		w.compNfill[i] = 0
	}
	for i := uint32(0); i < sent; i++ {
		addr := s.GetCompletion(idx + i)
		owner := s.Pool().OwnerOf(addr)
		w.compToFill[owner][w.compNfill[owner]] = uint64(addr)
		w.compNfill[owner]++
	}
	s.ReleaseCompletion(sent)
	s.Counters().AddTx(uint64(sent))
	s.Counters().DecOutstandingTx(sent)

	for i, sock := range w.Sockets {
		if w.compNfill[i] == 0 {
			continue
		}
		fidx, fgot := sock.ReserveFill(uint32(w.compNfill[i]))
		if fgot != uint32(w.compNfill[i]) {
			panic(api.NewError(api.ErrCodeRingInvariant, api.ErrShortReserveOnFreshRing).
				WithContext("worker", w.ID).WithContext("iface", i))
		}
		for j := uint8(0); j < w.compNfill[i]; j++ {
			sock.SetFill(fidx+uint32(j), umem.Addr(w.compToFill[i][j]))
		}
		sock.SubmitFill(fgot)
	}
}

// processBatchMulti is step B/C/D of spec.md §4.3 for one receiving
// interface: receive, classify, recycle drops, enqueue forwards
// (copying payload across pools when the destination uses a different
// pool than the source).
func (w *Worker) processBatchMulti(ifaceIdx int) {
	w.completeTxMulti(ifaceIdx)

	rx := w.Sockets[ifaceIdx]
	idx, rcvd := rx.PeekRx(w.BatchSize)
	if rcvd == 0 {
		if rx.BindMode() != api.BindCopy && (w.BusyPoll || rx.FQNeedsWakeup()) {
			rx.Counters().AddRxEmptyPoll()
			_ = rx.PokeRx()
		}
		return
	}

	ndrop := uint8(0)
	for i := range w.ntx {
		w.ntx[i] = 0
	}

	for i := uint32(0); i < rcvd; i++ {
		d := rx.GetRx(idx + i)
		pkt := rx.Pool().PacketBytes(d.Addr, int(d.Len))

		target := w.Processor(pkt, ifaceIdx)
		if target < 0 || target >= len(w.Sockets) {
			w.toDrop[ndrop] = d
			ndrop++
			continue
		}
		w.toTx[target][w.ntx[target]] = d
		w.ntx[target]++
	}
	rx.ReleaseRx(rcvd)
	rx.Counters().AddRx(uint64(rcvd))

	if ndrop > 0 {
		fidx, fgot := rx.ReserveFill(uint32(ndrop))
		if fgot != uint32(ndrop) {
			panic(api.NewError(api.ErrCodeRingInvariant, api.ErrShortReserveOnFreshRing).
				WithContext("worker", w.ID).WithContext("iface", ifaceIdx))
		}
		for i := uint8(0); i < ndrop; i++ {
			rx.SetFill(fidx+uint32(i), w.toDrop[i].Addr)
		}
		rx.SubmitFill(fgot)
	}

	for target, n := range w.ntx {
		if n == 0 {
			continue
		}
		tgtSock := w.Sockets[target]

		tidx, tgot := tgtSock.ReserveTx(uint32(n))
		for tgot != uint32(n) {
			w.completeTxMulti(ifaceIdx)
			if w.BusyPoll || tgtSock.TXNeedsWakeup() {
				tgtSock.Counters().AddTxWakeupSendto()
				_ = tgtSock.Kick()
			}
			tidx, tgot = tgtSock.ReserveTx(uint32(n))
		}

		crossPool := rx.Pool() != tgtSock.Pool()
		for j := uint8(0); j < n; j++ {
			d := w.toTx[target][j]
			if crossPool {
				dst := tgtSock.Pool().PacketBytes(d.Addr, int(d.Len))
				src := rx.Pool().PacketBytes(d.Addr, int(d.Len))
				copy(dst, src)
			}
			tgtSock.SetTx(tidx+uint32(j), d)
		}
		tgtSock.SubmitTx(uint32(n))
		tgtSock.Counters().IncOutstandingTx(uint32(n))
	}
}

// completeTx1if is complete_tx_1if from the original: identical to
// completeTxMulti's recycle step, specialized to a single socket so
// every completed frame always belongs to that same socket's own fill
// queue (no owner bucketing needed).
func (w *Worker) completeTx1if(s xsk.Handle) {
	outstanding := s.OutstandingTx()
	if outstanding == 0 {
		return
	}
	if w.needsManualKick(s) {
		s.Counters().AddTxTriggerSendto()
		_ = s.Kick()
	}

	n := w.BatchSize
	if outstanding < n {
		n = outstanding
	}

	cidx, sent := s.PeekCompletion(n)
	if sent == 0 {
		return
	}
	s.Counters().AddTx(uint64(sent))
	s.Counters().DecOutstandingTx(sent)

	fidx, fgot := s.ReserveFill(sent)
	if fgot != sent {
		panic(api.NewError(api.ErrCodeRingInvariant, api.ErrShortReserveOnFreshRing).
			WithContext("worker", w.ID))
	}
	for i := uint32(0); i < sent; i++ {
		s.SetFill(fidx+i, s.GetCompletion(cidx+i))
	}
	s.SubmitFill(fgot)
	s.ReleaseCompletion(sent)
}

// processBatch1if is process_batch_1if from the original: every
// forwarded packet loops back onto the same single socket, so there is
// never a cross-pool copy to perform.
func (w *Worker) processBatch1if(s xsk.Handle) {
	w.completeTx1if(s)

	idx, rcvd := s.PeekRx(w.BatchSize)
	if rcvd == 0 {
		if s.BindMode() != api.BindCopy && (w.BusyPoll || s.FQNeedsWakeup()) {
			s.Counters().AddRxEmptyPoll()
			_ = s.PokeRx()
		}
		return
	}

	ndrop, ntx := uint8(0), uint8(0)
	var toTx [api.MaxBatchSize]xsk.Desc

	for i := uint32(0); i < rcvd; i++ {
		d := s.GetRx(idx + i)
		pkt := s.Pool().PacketBytes(d.Addr, int(d.Len))

		if w.Processor(pkt, 0) == -1 {
			w.toDrop[ndrop] = d
			ndrop++
		} else {
			toTx[ntx] = d
			ntx++
		}
	}
	s.ReleaseRx(rcvd)
	s.Counters().AddRx(uint64(rcvd))

	if ndrop > 0 {
		fidx, fgot := s.ReserveFill(uint32(ndrop))
		if fgot != uint32(ndrop) {
			panic(api.NewError(api.ErrCodeRingInvariant, api.ErrShortReserveOnFreshRing).
				WithContext("worker", w.ID))
		}
		for i := uint8(0); i < ndrop; i++ {
			s.SetFill(fidx+uint32(i), w.toDrop[i].Addr)
		}
		s.SubmitFill(fgot)
	}

	if ntx > 0 {
		tidx, tgot := s.ReserveTx(uint32(ntx))
		for tgot != uint32(ntx) {
			w.completeTx1if(s)
			if w.BusyPoll || s.TXNeedsWakeup() {
				s.Counters().AddTxWakeupSendto()
				_ = s.Kick()
			}
			tidx, tgot = s.ReserveTx(uint32(ntx))
		}
		for i := uint8(0); i < ntx; i++ {
			s.SetTx(tidx+uint32(i), toTx[i])
		}
		s.SubmitTx(uint32(ntx))
		s.Counters().IncOutstandingTx(uint32(ntx))
	}
}

