// File: control/config_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xskframe/xskframe/api"
)

func TestConfigStoreSnapshotIsACopy(t *testing.T) {
	cfg := api.Config{
		Workers:   2,
		FrameSize: 2048,
		Interfaces: []api.InterfaceConfig{
			{Name: "eth0", BindMode: api.BindZeroCopy},
		},
	}
	cs := NewConfigStore(cfg)

	snap := cs.Snapshot()
	snap.Interfaces[0].Name = "mutated"

	again := cs.Snapshot()
	require.Equalf(t, "eth0", again.Interfaces[0].Name, "mutating a snapshot's slice leaked into the store")
}

func TestConfigStoreTriggerReloadNotifiesListeners(t *testing.T) {
	cs := NewConfigStore(api.Config{Workers: 1})

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	seen := 0
	cs.OnReload(func(api.Config) { mu.Lock(); seen++; mu.Unlock(); wg.Done() })
	cs.OnReload(func(api.Config) { mu.Lock(); seen++; mu.Unlock(); wg.Done() })

	cs.TriggerReload()
	wg.Wait()

	require.Equal(t, 2, seen)
}
