//go:build !linux
// +build !linux

// File: internal/affinity/affinity_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without sched_setaffinity. spec.md's Non-goals
// exclude portability beyond a kernel with a zero-copy packet-socket
// facility, so this only needs to fail loudly rather than degrade.

package affinity

import "errors"

var errUnsupportedPlatform = errors.New("affinity: CPU pinning not supported on this platform")

func (c *CPUSet) Pin(cpuID int) error { return errUnsupportedPlatform }
func (c *CPUSet) Unpin() error        { return errUnsupportedPlatform }

// CountCPUs always fails on non-Linux platforms.
func CountCPUs() (int, error) { return 0, errUnsupportedPlatform }

// EligibleCPUs always fails on non-Linux platforms.
func EligibleCPUs() ([]int, error) { return nil, errUnsupportedPlatform }
