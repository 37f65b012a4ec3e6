// File: internal/taskqueue/taskqueue_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package taskqueue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueRunsAllSubmittedTasks(t *testing.T) {
	tq := New(4)
	var n atomic.Int64
	const total = 200
	for i := 0; i < total; i++ {
		require.NoError(t, tq.Submit(func() { n.Add(1) }))
	}
	tq.Close()
	require.EqualValues(t, total, n.Load())
}

func TestQueueSubmitAfterCloseFails(t *testing.T) {
	tq := New(1)
	tq.Close()
	require.ErrorIs(t, tq.Submit(func() {}), ErrClosed)
}

func TestQueueRecoversPanickingTask(t *testing.T) {
	tq := New(1)
	done := make(chan struct{})
	require.NoError(t, tq.Submit(func() { panic("boom") }))
	require.NoError(t, tq.Submit(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stalled after a panicking task")
	}
	tq.Close()
}
