//go:build !linux
// +build !linux

// File: datapath/factory_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package datapath

import (
	"errors"

	"github.com/xskframe/xskframe/xsk"
)

var errUnsupportedPlatform = errors.New("datapath: AF_XDP sockets require linux")

func defaultSocketFactory(cfg xsk.Config) (xsk.Handle, error) {
	return nil, errUnsupportedPlatform
}
