//go:build linux

// File: worker/poller_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"time"

	"golang.org/x/sys/unix"
)

// SyscallPoller implements Poller with the real poll(2) syscall, per
// original_source/src/xsknf.c's worker_loop (POLLIN over every
// interface's fd, POLL_TIMEOUT_MS timeout).
type SyscallPoller struct{}

func (SyscallPoller) Poll(fds []int, timeout time.Duration) (bool, error) {
	pfds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}
	n, err := unix.Poll(pfds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

// NewDefaultPoller returns the real poll(2)-backed Poller.
func NewDefaultPoller() Poller { return SyscallPoller{} }
