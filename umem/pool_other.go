//go:build !linux

// File: umem/pool_other.go
// Non-Linux stub: AF_XDP is a Linux-only kernel facility (spec.md's
// Non-goals exclude portability beyond it), but the package still
// needs to compile elsewhere for tooling (go vet ./... from a non-Linux
// workstation, IDE indexing).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import "errors"

var errUnsupportedPlatform = errors.New("umem: AF_XDP pools require linux")

func mmapAnonymous(size int) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func munmap(b []byte) error {
	return errUnsupportedPlatform
}
