// File: umem/doc.go
// Package umem
// Author: momentics <momentics@gmail.com>
//
// Frame pool and ring protocol for the AF_XDP-style datapath: address
// encoding that recovers a frame's owning socket from a bare kernel
// address, mmap'd backing buffers sliced into per-socket slabs, and the
// reserve/submit/peek/release ring primitive shared by fill,
// completion, RX, and TX queues.
package umem
