// File: internal/affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral CPU affinity API. Platform-specific implementations
// live in separate files (affinity_linux.go, affinity_other.go) guarded
// by build tags, following the teacher's affinity/affinity.go split.
//
// Pins a worker's OS thread for the lifetime of its datapath loop
// (spec.md §4.5, worker/schedule.go's Run). Unlike the teacher's cgo +
// libnuma implementation, this package uses golang.org/x/sys/unix's
// SchedSetaffinity directly: CPU pinning alone needs no NUMA-aware
// allocation hook, only the syscall the teacher's cgo shim wraps.
package affinity

// Pinner pins and releases the calling OS thread's CPU affinity. A
// *CPUSet implements api.Affinity.
type Pinner interface {
	Pin(cpuID int) error
	Unpin() error
}

// CPUSet pins the calling goroutine's locked OS thread to a single
// logical CPU, then restores whatever mask was active before Pin on
// Unpin. The caller must have already called runtime.LockOSThread --
// Pin affects whichever OS thread is currently executing the calling
// goroutine, so switching threads between Pin and Unpin would pin the
// wrong thread.
type CPUSet struct {
	prior    []int
	hasPrior bool
}

// New returns a CPUSet ready to Pin the calling locked OS thread.
func New() *CPUSet {
	return &CPUSet{}
}
