//go:build linux
// +build linux

// File: control/platform_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux-specific debug probes.

package control

import (
	"runtime"

	"github.com/xskframe/xskframe/internal/affinity"
)

// RegisterPlatformProbes sets Linux-specific debug metrics: total
// logical CPUs and the calling thread's current affinity-mask size
// (the same count datapath's InsufficientCPUs check consults).
func RegisterPlatformProbes(mr *MetricsRegistry) {
	mr.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	mr.RegisterProbe("platform.affinity_cpus", func() any {
		n, err := affinity.CountCPUs()
		if err != nil {
			return -1
		}
		return n
	})
}
