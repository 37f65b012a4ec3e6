// File: control/metrics_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xskframe/xskframe/api"
)

func TestMetricsRegistryUpdateAndSnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	k := SocketKey{WorkerIdx: 0, IfaceIdx: 1}

	_, ok := mr.LastUpdated(k)
	require.Falsef(t, ok, "LastUpdated on empty registry should report !ok")

	at := time.Unix(1000, 0)
	mr.Update(k, api.Stats{RxNpkts: 42}, at)

	snap := mr.Snapshot()
	require.Equal(t, uint64(42), snap[k].RxNpkts)
	got, ok := mr.LastUpdated(k)
	require.True(t, ok)
	require.True(t, got.Equal(at))
}

func TestMetricsRegistrySnapshotIsIndependentCopy(t *testing.T) {
	mr := NewMetricsRegistry()
	k := SocketKey{WorkerIdx: 0, IfaceIdx: 0}
	mr.Update(k, api.Stats{RxNpkts: 1}, time.Unix(0, 0))

	snap := mr.Snapshot()
	snap[k] = api.Stats{RxNpkts: 999}

	fresh := mr.Snapshot()
	require.Equalf(t, uint64(1), fresh[k].RxNpkts, "mutating a snapshot map leaked into the registry")
}
