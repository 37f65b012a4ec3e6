// File: xsk/counters_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xskframe/xskframe/api"
)

func TestCountersOutstandingTxIncDec(t *testing.T) {
	var c Counters
	c.IncOutstandingTx(10)
	assert.Equal(t, uint32(10), c.OutstandingTx())
	c.DecOutstandingTx(4)
	assert.Equal(t, uint32(6), c.OutstandingTx())
	c.DecOutstandingTx(6)
	assert.Equal(t, uint32(0), c.OutstandingTx())
}

func TestCountersSnapshotMergesLocalFields(t *testing.T) {
	var c Counters
	c.AddRx(3)
	c.AddTx(2)
	c.AddOptPoll()
	c.AddRxEmptyPoll()
	c.AddTxTriggerSendto()
	c.AddTxWakeupSendto()

	snap := c.Snapshot(api.Stats{})
	assert.Equal(t, uint64(3), snap.RxNpkts)
	assert.Equal(t, uint64(2), snap.TxNpkts)
	assert.Equal(t, uint64(1), snap.OptPolls)
	assert.Equal(t, uint64(1), snap.RxEmptyPolls)
	assert.Equal(t, uint64(1), snap.TxTriggerSendtos)
	assert.Equal(t, uint64(1), snap.TxWakeupSendtos)
}
