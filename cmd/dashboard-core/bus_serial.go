package main

import "github.com/dkuznetsov/j1939dash/transport/serial"

func openSerial(name string) (*serial.Reader, error) {
	return serial.Open(name)
}
