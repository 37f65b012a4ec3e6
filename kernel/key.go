// File: kernel/key.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CompositeKey is the xsks-map key formula (Decided Open Question 2,
// DESIGN.md), factored out of loader_linux.go so it can be unit
// tested without a Linux build tag.

package kernel

import "github.com/xskframe/xskframe/api"

// CompositeKey returns the xsks map key for a (worker, interface)
// pair: workerIdx*api.MaxInterfaces + ifaceIdx.
func CompositeKey(workerIdx, ifaceIdx int) uint32 {
	return uint32(workerIdx*api.MaxInterfaces + ifaceIdx)
}
