//go:build !linux

package main

import (
	"fmt"

	"github.com/dkuznetsov/j1939dash/j1939"
)

// canReceiver is the subset of transport/can.Receiver's exported
// surface this command needs, satisfied by a stub on non-Linux
// platforms where SocketCAN does not exist.
type canReceiver struct{}

func (canReceiver) Run(func(j1939.Message), func(uint32, []byte)) {}
func (canReceiver) Close() error                                  { return nil }

func openCAN(ifname string) (*canReceiver, error) {
	return nil, fmt.Errorf("can: SocketCAN is only available on linux")
}
