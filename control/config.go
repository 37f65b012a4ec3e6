// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe, read-only view of the running configuration. Unlike the
// teacher's control/config.go, this store never accepts a runtime
// update to the config it was built from: worker count, interface
// set, and frame size are fixed for a Datapath's lifetime (spec.md's
// Non-goals forbid dynamic reconfiguration of those). What it does
// allow to change at runtime is orthogonal to the datapath shape --
// log level, debug-probe registration -- surfaced via OnReload.

package control

import (
	"sync"

	"github.com/xskframe/xskframe/api"
)

// ConfigStore holds an immutable api.Config snapshot plus a set of
// reload listeners for ambient (non-datapath-shape) settings.
type ConfigStore struct {
	mu        sync.RWMutex
	cfg       api.Config
	listeners []func(api.Config)
}

// NewConfigStore captures cfg by value; callers must not mutate a
// Config after passing it here.
func NewConfigStore(cfg api.Config) *ConfigStore {
	return &ConfigStore{cfg: cfg}
}

// Snapshot returns a copy of the running configuration.
func (cs *ConfigStore) Snapshot() api.Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := cs.cfg
	out.Interfaces = append([]api.InterfaceConfig(nil), cs.cfg.Interfaces...)
	return out
}

// OnReload registers a listener invoked with the current snapshot
// whenever TriggerReload is called. For ambient settings (e.g. log
// level), not for datapath topology changes. cmd/xskfw registers no
// listener and does not call TriggerReload.
func (cs *ConfigStore) OnReload(fn func(api.Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// TriggerReload invokes every registered listener with the current
// snapshot, each on its own goroutine so a slow listener cannot block
// the caller (mirroring the teacher's dispatchReload).
func (cs *ConfigStore) TriggerReload() {
	snap := cs.Snapshot()
	cs.mu.RLock()
	listeners := append([]func(api.Config)(nil), cs.listeners...)
	cs.mu.RUnlock()
	for _, fn := range listeners {
		go fn(snap)
	}
}
