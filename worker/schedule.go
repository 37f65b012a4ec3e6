// File: worker/schedule.go
// Run pins the calling goroutine's OS thread and drives ProcessOnce in
// a loop until stop is set, per spec.md §4.5: one pinned OS thread per
// worker, poll() with a bounded timeout when enabled, otherwise a tight
// loop relying on the kernel's own busy-poll or need-wakeup signalling.
//
// Grounded on original_source/src/xsknf.c's worker_loop (poll() over
// every interface's fd with POLL_TIMEOUT_MS=1000, then dispatch to
// process_batch or process_batch_1if) and the teacher's
// server/scheduler.go goroutine-per-worker shape
// (github.com/momentics/hioload-ws), replacing its heap-based task
// scheduling with a fixed one-goroutine-per-CPU assignment since the
// datapath has no scheduling policy to speak of -- every worker runs
// the same loop forever.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/xskframe/xskframe/api"
)

// Poller abstracts poll(2) over the worker's socket file descriptors so
// Run can be tested without real fds (workertest sockets report Fd()
// == -1 and are driven with PollEnabled = false in tests).
type Poller interface {
	// Poll blocks until at least one fd is readable or timeout elapses,
	// returning true if the wait ended with readable fds and false on
	// a plain timeout.
	Poll(fds []int, timeout time.Duration) (bool, error)
}

// Run executes the scheduling loop described in spec.md §4.5 until
// stop.Load() is true. affinity may be nil (no pinning, e.g. tests).
func (w *Worker) Run(stop *atomic.Bool, affinity api.Affinity, cpuID int, poller Poller, timeout time.Duration) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if affinity != nil {
		if err := affinity.Pin(cpuID); err != nil {
			return err
		}
		defer affinity.Unpin()
	}

	fds := make([]int, len(w.Sockets))
	for i, s := range w.Sockets {
		fds[i] = s.Fd()
	}

	for !stop.Load() {
		if w.PollEnabled && poller != nil {
			for _, s := range w.Sockets {
				s.Counters().AddOptPoll()
			}
			ready, err := poller.Poll(fds, timeout)
			if err != nil {
				continue // transient kernel notification error, spec.md §7: ignored
			}
			if !ready {
				continue
			}
		}
		w.ProcessOnce()
	}
	return nil
}
