// File: internal/taskqueue/taskqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Background executor for off-datapath work: async stats-snapshot
// publication (control.MetricsRegistry). Reload listeners do not run
// here; control.ConfigStore.TriggerReload starts its own goroutines.
// Never touches a pool, ring, or socket directly -- the datapath's
// worker goroutines own those exclusively, and nothing here may block
// them.
//
// Adapted from the teacher's internal/concurrency/executor.go, which
// wraps github.com/eapache/queue in a fixed worker pool. That queue
// type is not itself safe for concurrent producers/consumers (a gap
// the teacher's own executor has), so this version adds the mutex the
// original omits -- correctness matters more than raw throughput for
// this queue's off-datapath traffic.

package taskqueue

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("taskqueue: closed")

// TaskFunc is a unit of background work. Panics are recovered and
// dropped silently (mirroring the teacher's worker.safeExecute),
// since a misbehaving callback must never take down a worker thread.
type TaskFunc func()

// Queue runs submitted tasks across a fixed pool of goroutines, FIFO
// within the shared queue.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	q      *queue.Queue
	closed bool
	wg     sync.WaitGroup
}

// New starts a Queue with numWorkers background goroutines. numWorkers
// <= 0 is clamped to 1.
func New(numWorkers int) *Queue {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	tq := &Queue{q: queue.New()}
	tq.cond = sync.NewCond(&tq.mu)
	for i := 0; i < numWorkers; i++ {
		tq.wg.Add(1)
		go tq.run()
	}
	return tq
}

// Submit enqueues task for execution by one of the background
// goroutines. Returns ErrClosed once Close has been called.
func (tq *Queue) Submit(task TaskFunc) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	if tq.closed {
		return ErrClosed
	}
	tq.q.Add(task)
	tq.cond.Signal()
	return nil
}

// Close stops accepting new tasks and waits for in-flight and
// already-queued tasks to drain.
func (tq *Queue) Close() {
	tq.mu.Lock()
	if tq.closed {
		tq.mu.Unlock()
		return
	}
	tq.closed = true
	tq.mu.Unlock()
	tq.cond.Broadcast()
	tq.wg.Wait()
}

func (tq *Queue) run() {
	defer tq.wg.Done()
	for {
		tq.mu.Lock()
		for tq.q.Length() == 0 && !tq.closed {
			tq.cond.Wait()
		}
		if tq.q.Length() == 0 && tq.closed {
			tq.mu.Unlock()
			return
		}
		item := tq.q.Remove()
		tq.mu.Unlock()

		if task, ok := item.(TaskFunc); ok {
			runTask(task)
		}
	}
}

func runTask(task TaskFunc) {
	defer func() { _ = recover() }()
	task()
}
