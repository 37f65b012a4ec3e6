// File: datapath/factory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SocketFactory abstracts real socket creation so Datapath's
// orchestration logic (bind-mode resolution, pool sizing, worker
// wiring) can be exercised in tests against workertest.FakeSocket
// without a real AF_XDP-capable kernel, the same reason xsk.Handle
// exists.

package datapath

import "github.com/xskframe/xskframe/xsk"

// SocketFactory creates one socket from cfg. The Linux build's
// default factory wraps xsk.NewSocket; tests substitute a factory
// producing workertest.FakeSocket instances.
type SocketFactory func(cfg xsk.Config) (xsk.Handle, error)
