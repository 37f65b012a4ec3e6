// File: cmd/xskfw/processor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// xskfw is a reference command for the library, not "the host
// application" spec.md §4.6 describes as supplying the packet
// processor -- a real deployment links the datapath package directly
// and passes its own api.PacketProcessor. This default bridges every
// packet to the next configured interface (wrapping at the last one
// back to the first), the same cyclic-bridge shape as spec.md §8's
// Scenario C, so the binary is runnable standalone for smoke-testing
// an interface pair.

package main

import "github.com/xskframe/xskframe/api"

func bridgeProcessor(nInterfaces int) api.PacketProcessor {
	return func(pkt []byte, rxIface int) int {
		if nInterfaces <= 1 {
			return -1
		}
		return (rxIface + 1) % nInterfaces
	}
}
