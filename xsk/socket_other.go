//go:build !linux

// File: xsk/socket_other.go
// Non-Linux stub, see umem/pool_other.go for rationale.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package xsk

import (
	"errors"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/umem"
)

var errUnsupportedPlatform = errors.New("xsk: AF_XDP sockets require linux")

type Socket struct{ socketCore }

type Config struct {
	IfaceName  string
	IfaceIndex int
	QueueID    uint32
	BindMode   api.BindMode
	Pool       *umem.Pool
	SocketIdx  int
	BusyPoll   bool
	UmemOwner  bool
	SharedFd   int
}

func NewSocket(cfg Config) (*Socket, error) {
	return nil, errUnsupportedPlatform
}

func (s *Socket) Fd() int        { return -1 }
func (s *Socket) Kick() error    { return errUnsupportedPlatform }
func (s *Socket) PokeRx() error  { return errUnsupportedPlatform }
func (s *Socket) Close() error   { return nil }
func (s *Socket) Stats() (api.Stats, error) {
	return api.Stats{}, errUnsupportedPlatform
}
