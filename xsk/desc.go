// File: xsk/desc.go
// Package xsk implements one (worker, interface) packet socket: the
// RX/TX/fill/completion ring quartet, bind-mode resolution, busy-poll
// sockopts, and the need-wakeup/kick protocol described in spec.md
// §4.2 and §4.6.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import "github.com/xskframe/xskframe/umem"

// Desc is one RX or TX ring descriptor: a frame address plus the
// length of the packet currently occupying it. Mirrors struct
// xdp_desc from original_source/src/xsknf.c (addr, len, options) --
// options is dropped here because nothing in this datapath uses it
// (no fragmentation support, spec.md's Non-goals).
type Desc struct {
	Addr umem.Addr
	Len  uint32
}
