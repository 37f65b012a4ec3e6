//go:build linux

// File: xsk/stats_linux.go
// Kernel statistics query, resolving spec.md §9's Open Question about
// the original's getsockopt(..., optlen=sizeof(stats)) bug: rather
// than hand-rolling unix.GetsockoptXDPStatistics's optlen, this calls
// the typed wrapper golang.org/x/sys/unix already provides, which
// computes the correct size internally (DESIGN.md).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import (
	"golang.org/x/sys/unix"

	"github.com/xskframe/xskframe/api"
)

func (s *Socket) Stats() (api.Stats, error) {
	kstats, err := unix.GetsockoptXDPStatistics(s.fd, unix.SOL_XDP, unix.XDP_STATISTICS)
	if err != nil {
		// spec.md §7: a stats-fetch failure is returned without side
		// effect -- the caller keeps its last-known snapshot.
		return api.Stats{}, fmtRingErr("get_socket_stats", err)
	}

	base := api.Stats{
		RxDroppedNpkts:   kstats.Rx_dropped,
		RxInvalidNpkts:   kstats.Rx_invalid_descs,
		TxInvalidNpkts:   kstats.Tx_invalid_descs,
		RxFullNpkts:      kstats.Rx_ring_full,
		RxFillEmptyNpkts: kstats.Rx_fill_ring_empty_descs,
		TxEmptyNpkts:     kstats.Tx_ring_empty_descs,
	}
	return s.counters.Snapshot(base), nil
}
