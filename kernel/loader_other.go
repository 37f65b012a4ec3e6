//go:build !linux
// +build !linux

// File: kernel/loader_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux stub: XDP and clsact/TC BPF are Linux kernel facilities,
// so every operation reports api.ErrNotSupported rather than degrade
// silently.

package kernel

import "github.com/xskframe/xskframe/api"

// Loader is a non-functional stand-in satisfying api.FilterLoader on
// platforms without an XDP-capable kernel.
type Loader struct{}

var _ api.FilterLoader = (*Loader)(nil)

// NewLoader returns a Loader whose every method reports
// api.ErrNotSupported.
func NewLoader() *Loader { return &Loader{} }

func (l *Loader) Load(objPath, xdpProgName string, ifaceNames []string, skbMode bool) error {
	return api.ErrNotSupported
}
func (l *Loader) PublishSocket(workerIdx, ifaceIdx int, fd int) error { return api.ErrNotSupported }
func (l *Loader) AttachEgress(iface string, tcProgName string) error { return api.ErrNotSupported }
func (l *Loader) DetachEgress(iface string) error                    { return api.ErrNotSupported }
func (l *Loader) Detach(ifaceNames []string) error                   { return api.ErrNotSupported }
func (l *Loader) Close() error                                       { return nil }
