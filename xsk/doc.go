// File: xsk/doc.go
// Package xsk
// Author: momentics <momentics@gmail.com>
//
// One packet socket: the fill/completion/RX/TX ring quartet bound to a
// single (worker, interface) pair, bind-mode resolution, busy-poll
// sockopts, and the need-wakeup/kick protocol. Handle is the
// kernel-independent surface the worker package drives; Socket is the
// real Linux backend.
package xsk
