//go:build linux
// +build linux

// File: internal/affinity/affinity_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPinUnpinRestoresPriorMask(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var before unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &before))
	require.NotZero(t, before.Count(), "expected a non-empty starting affinity mask")

	c := New()
	require.NoError(t, c.Pin(0))

	var during unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &during))
	require.Equal(t, 1, during.Count())
	require.True(t, during.IsSet(0))

	require.NoError(t, c.Unpin())

	var after unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &after))
	require.Equal(t, before.Count(), after.Count())
}

func TestCountCPUsNonZero(t *testing.T) {
	n, err := CountCPUs()
	require.NoError(t, err)
	require.Greater(t, n, 0)
}
