// File: xsk/counters.go
// Counters holds the locally-maintained (non-kernel-fetched) per-socket
// statistics from spec.md §3: rx_npkts and tx_npkts are incremented by
// the owning worker goroutine only, using relaxed atomics so a
// concurrent Stats() call from the control plane never blocks the
// datapath loop (spec.md §5's "relaxed atomics for stats").
//
// Grounded on the teacher's control/metrics.go MetricsRegistry counter
// style (github.com/momentics/hioload-ws), narrowed from a generic
// name->value map to the fixed counter set spec.md names.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import (
	"sync/atomic"

	"github.com/xskframe/xskframe/api"
)

// Counters is safe for concurrent increment-from-one-goroutine,
// read-from-any-goroutine use.
type Counters struct {
	rxNpkts          atomic.Uint64
	txNpkts          atomic.Uint64
	optPolls         atomic.Uint64
	rxEmptyPolls     atomic.Uint64
	txTriggerSendtos atomic.Uint64
	txWakeupSendtos  atomic.Uint64

	// outstandingTx mirrors the original's xsk_socket_info.outstanding_tx:
	// a software counter incremented when the worker submits TX
	// descriptors and decremented only once their completions have been
	// processed (original_source/src/xsknf.c's process_batch/complete_tx),
	// not simply the TX ring's producer-consumer distance (the kernel
	// may retire ring slots before userspace has drained the completion
	// queue for them).
	outstandingTx atomic.Uint32
}

func (c *Counters) AddRx(n uint64)     { c.rxNpkts.Add(n) }
func (c *Counters) AddTx(n uint64)     { c.txNpkts.Add(n) }
func (c *Counters) AddOptPoll()         { c.optPolls.Add(1) }
func (c *Counters) AddRxEmptyPoll()     { c.rxEmptyPolls.Add(1) }
func (c *Counters) AddTxTriggerSendto() { c.txTriggerSendtos.Add(1) }
func (c *Counters) AddTxWakeupSendto()  { c.txWakeupSendtos.Add(1) }

func (c *Counters) IncOutstandingTx(n uint32) { c.outstandingTx.Add(n) }
func (c *Counters) DecOutstandingTx(n uint32) { c.outstandingTx.Add(^(n - 1)) } // unsigned subtract
func (c *Counters) OutstandingTx() uint32     { return c.outstandingTx.Load() }

// Snapshot merges the locally-tracked counters into the given
// kernel-fetched base (the caller has already populated the
// kernel-sourced fields via Stats) and returns the combined value.
func (c *Counters) Snapshot(base api.Stats) api.Stats {
	base.RxNpkts = c.rxNpkts.Load()
	base.TxNpkts = c.txNpkts.Load()
	base.OptPolls = c.optPolls.Load()
	base.RxEmptyPolls = c.rxEmptyPolls.Load()
	base.TxTriggerSendtos = c.txTriggerSendtos.Load()
	base.TxWakeupSendtos = c.txWakeupSendtos.Load()
	return base
}
