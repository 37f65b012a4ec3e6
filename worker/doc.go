// File: worker/doc.go
// Package worker
// Author: momentics <momentics@gmail.com>
//
// The per-CPU datapath loop: multi-interface and single-interface
// batch processing over a set of xsk.Handle sockets, TX completion
// recycling, drop recycling, cross-pool forwarding, and the
// poll/busy-poll scheduling wrapper that runs it on a pinned OS thread
// until the stop flag is set.
package worker
