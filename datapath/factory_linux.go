//go:build linux
// +build linux

// File: datapath/factory_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package datapath

import "github.com/xskframe/xskframe/xsk"

func defaultSocketFactory(cfg xsk.Config) (xsk.Handle, error) {
	return xsk.NewSocket(cfg)
}
