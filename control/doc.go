// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Read-only configuration snapshot, merged per-socket metrics, and
// debug-probe introspection for xskframe. Part of the datapath's
// control plane -- never on the hot path, never able to mutate a
// running worker's topology.
//
// Provides concurrent-safe state handling primitives:
//   - Immutable Config snapshot plus ambient-setting reload listeners
//   - Per-(worker, interface) Stats aggregation
//   - Named debug probe registration and dump
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
