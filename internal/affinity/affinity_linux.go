//go:build linux
// +build linux

// File: internal/affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation via golang.org/x/sys/unix.Sched{Get,Set}affinity
// against pid 0 (the calling thread, per sched_setaffinity(2)). Grounded
// on the same syscall the teacher's cgo shim
// (_examples/momentics-hioload-ws/affinity/affinity_linux.go) wraps via
// pthread_setaffinity_np, reached here without cgo.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Pin restricts the calling OS thread to cpuID, remembering the prior
// mask so Unpin can restore it.
func (c *CPUSet) Pin(cpuID int) error {
	var prior unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prior); err != nil {
		return fmt.Errorf("affinity: SchedGetaffinity: %w", err)
	}
	c.prior = c.prior[:0]
	for i := 0; i < prior.Count(); i++ {
		if prior.IsSet(i) {
			c.prior = append(c.prior, i)
		}
	}
	c.hasPrior = true

	var want unix.CPUSet
	want.Zero()
	want.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &want); err != nil {
		return fmt.Errorf("affinity: SchedSetaffinity(cpu=%d): %w", cpuID, err)
	}
	return nil
}

// Unpin restores whatever affinity mask was active before Pin. A no-op
// if Pin was never called.
func (c *CPUSet) Unpin() error {
	if !c.hasPrior {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range c.prior {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: restore SchedSetaffinity: %w", err)
	}
	return nil
}

// CountCPUs returns the number of CPUs available to the calling
// thread's current affinity mask -- the same count datapath's
// InsufficientCPUs check takes from len(EligibleCPUs()).
func CountCPUs() (int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, fmt.Errorf("affinity: SchedGetaffinity: %w", err)
	}
	return set.Count(), nil
}

// EligibleCPUs returns the sorted logical CPU IDs in the calling
// thread's current affinity mask, mirroring xsknf_start_workers's
// CPU_ISSET enumeration (original_source/src/xsknf.c): worker N is
// later pinned to the Nth CPU in this list.
func EligibleCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("affinity: SchedGetaffinity: %w", err)
	}
	want := set.Count()
	cpus := make([]int, 0, want)
	// unix.CPUSet supports up to _CPU_SETSIZE (1024) logical CPUs;
	// IsSet is bounds-checked and returns false past that, so a fixed
	// upper bound is safe regardless of the host's actual CPU count.
	for i := 0; i < 1024 && len(cpus) < want; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
