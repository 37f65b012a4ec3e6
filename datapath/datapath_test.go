// File: datapath/datapath_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package datapath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/control"
	"github.com/xskframe/xskframe/workertest"
	"github.com/xskframe/xskframe/xsk"
)

func fakeFactory(t *testing.T) SocketFactory {
	t.Helper()
	return func(cfg xsk.Config) (xsk.Handle, error) {
		return workertest.NewFakeSocket(cfg.Pool, cfg.SocketIdx, cfg.BindMode)
	}
}

func testConfig() api.Config {
	return api.Config{
		Interfaces: []api.InterfaceConfig{
			{Name: "lo", BindMode: api.BindCopy},
		},
		Workers:     1,
		FrameSize:   2048,
		BatchSize:   64,
		Poll:        false,
		PollTimeout: 100 * time.Millisecond,
	}
}

func noopProcessor(pkt []byte, rxIface int) int { return -1 }

func TestInitAllocatesPoolsAndSockets(t *testing.T) {
	d, err := Init(Params{
		Config:        testConfig(),
		Processor:     noopProcessor,
		socketFactory: fakeFactory(t),
	})
	require.NoError(t, err)
	defer d.Cleanup()

	require.Len(t, d.sockets, 1, "expected 1 worker socket set")
	require.Len(t, d.sockets[0].sockets, 1, "expected 1 socket")
	require.NotNilf(t, d.pools[0][api.BindCopy-1], "expected a BindCopy pool to be allocated")
	require.Nilf(t, d.pools[0][api.BindZeroCopy-1], "did not expect a BindZeroCopy pool when no interface uses it")
}

func TestInitRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0
	_, err := Init(Params{Config: cfg, Processor: noopProcessor, socketFactory: fakeFactory(t)})
	require.Error(t, err, "expected an error for zero workers")
}

func TestStartStopWorkersLifecycle(t *testing.T) {
	d, err := Init(Params{
		Config:        testConfig(),
		Processor:     noopProcessor,
		socketFactory: fakeFactory(t),
	})
	require.NoError(t, err)
	defer d.Cleanup()

	require.NoError(t, d.StartWorkers())
	require.ErrorIs(t, d.StartWorkers(), api.ErrAlreadyRunning)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, d.StopWorkers())
	require.ErrorIs(t, d.StopWorkers(), api.ErrNotRunning)
}

func TestGetSocketStatsPublishesToMetrics(t *testing.T) {
	d, err := Init(Params{
		Config:        testConfig(),
		Processor:     noopProcessor,
		socketFactory: fakeFactory(t),
	})
	require.NoError(t, err)
	defer d.Cleanup()

	_, err = d.GetSocketStats(0, 0)
	require.NoError(t, err)
	_, err = d.GetSocketStats(5, 0)
	require.Error(t, err, "expected out-of-range worker index error")

	// Metrics.Update is dispatched asynchronously via the task queue;
	// poll briefly rather than assume immediate visibility.
	key := control.SocketKey{WorkerIdx: 0, IfaceIdx: 0}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := d.Metrics.LastUpdated(key); ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("metrics were never published")
}

func TestCleanupIsIdempotent(t *testing.T) {
	d, err := Init(Params{
		Config:        testConfig(),
		Processor:     noopProcessor,
		socketFactory: fakeFactory(t),
	})
	require.NoError(t, err)
	require.NoError(t, d.Cleanup(), "first Cleanup")
	require.NoError(t, d.Cleanup(), "second Cleanup")
}

func TestResolveBindModesRespectsPoolReuse(t *testing.T) {
	cfg := testConfig()
	cfg.Interfaces = []api.InterfaceConfig{
		{Name: "lo", BindMode: api.BindCopy},
		{Name: "lo", BindMode: api.BindZeroCopy},
	}
	modes := resolveBindModes(cfg)
	require.Equal(t, []api.BindMode{api.BindCopy, api.BindZeroCopy}, modes)
}
