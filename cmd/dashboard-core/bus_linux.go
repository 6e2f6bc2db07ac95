//go:build linux

package main

import (
	"github.com/dkuznetsov/j1939dash/transport/can"
)

func openCAN(ifname string) (*can.Receiver, error) {
	return can.Open(ifname)
}
