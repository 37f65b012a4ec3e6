// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Merged per-(worker, interface) statistics for introspection tooling.
// Narrowed from the teacher's control/metrics.go generic
// map[string]any registry to the fixed api.Stats shape every socket
// already produces, keyed the same way the kernel xsks map is keyed
// (Decided Open Question 2 in DESIGN.md): worker index, interface
// index.

package control

import (
	"sync"
	"time"

	"github.com/xskframe/xskframe/api"
)

// SocketKey identifies one (worker, interface) pair's statistics.
type SocketKey struct {
	WorkerIdx int
	IfaceIdx  int
}

// MetricsRegistry holds the most recent api.Stats snapshot published
// for each socket, plus a side table of named debug probes (e.g.
// platform CPU counts or pool watermarks, read back via DumpState) --
// both are read-only introspection surfaces over the same running
// Datapath, so one registry serves both. cmd/xskfw exposes neither.
type MetricsRegistry struct {
	mu      sync.RWMutex
	stats   map[SocketKey]api.Stats
	updated map[SocketKey]time.Time

	probesMu sync.RWMutex
	probes   map[string]func() any
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		stats:   make(map[SocketKey]api.Stats),
		updated: make(map[SocketKey]time.Time),
		probes:  make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, e.g. platform CPU counts
// or per-pool watermarks.
func (mr *MetricsRegistry) RegisterProbe(name string, fn func() any) {
	mr.probesMu.Lock()
	defer mr.probesMu.Unlock()
	mr.probes[name] = fn
}

// DumpState evaluates and returns every registered probe's current
// value, keyed by name.
func (mr *MetricsRegistry) DumpState() map[string]any {
	mr.probesMu.RLock()
	defer mr.probesMu.RUnlock()
	out := make(map[string]any, len(mr.probes))
	for k, fn := range mr.probes {
		out[k] = fn()
	}
	return out
}

// Update records the latest stats for a socket. Called from
// datapath.GetSocketStats or a background taskqueue.TaskFunc -- never
// from the worker's own hot loop.
func (mr *MetricsRegistry) Update(key SocketKey, stats api.Stats, at time.Time) {
	mr.mu.Lock()
	mr.stats[key] = stats
	mr.updated[key] = at
	mr.mu.Unlock()
}

// Snapshot returns a copy of every socket's most recently published
// stats.
func (mr *MetricsRegistry) Snapshot() map[SocketKey]api.Stats {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[SocketKey]api.Stats, len(mr.stats))
	for k, v := range mr.stats {
		out[k] = v
	}
	return out
}

// LastUpdated reports when key's stats were last published, and
// whether any snapshot has been recorded at all.
func (mr *MetricsRegistry) LastUpdated(key SocketKey) (time.Time, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	t, ok := mr.updated[key]
	return t, ok
}
