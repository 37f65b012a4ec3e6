// Package datapath is the orchestrator named in spec.md §2 and §4.7:
// it resolves bind modes, allocates the (at most two) UMEM pools per
// worker, creates sockets, optionally loads the kernel-side XDP
// filter and publishes socket descriptors into its map, pins worker
// OS threads, and runs/stops the datapath loop.
//
// Grounded on original_source/src/xsknf.c's xsknf_init /
// xsknf_start_workers / xsknf_stop_workers / xsknf_cleanup sequence,
// and on the teacher's facade/hioload.go one-call
// New/Start/Stop/Shutdown orchestrator shape
// (github.com/momentics/hioload-ws).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package datapath
