//go:build linux

// Package can reads raw extended CAN frames off a SocketCAN interface
// and decodes them with the j1939 package, grounded on the
// unix.Socket/Bind/Recvfrom read-loop idiom of the teacher's J1939 bus
// (cmd/agent-j1939/bus.go) but using CAN_RAW rather than a J1939-proto
// socket, since the PGN/SA extraction in this core happens in
// j1939.DecodeFrame rather than in the kernel.
package can

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dkuznetsov/j1939dash/j1939"
)

// frameSize is sizeof(struct can_frame) on Linux: 4-byte ID, 1-byte
// length, 3 bytes padding, 8 bytes data.
const frameSize = 16

const canEFFFlag = 0x80000000 // CAN_EFF_FLAG: extended 29-bit identifier

// Receiver drains a SocketCAN interface and hands decoded j1939
// messages to a callback, mirroring the teacher's readFrames/stopChan
// shutdown idiom.
type Receiver struct {
	fd       int
	stopChan chan struct{}
	ifname   string
}

// Open binds a CAN_RAW socket to ifname (e.g. "can0" or a vcan test
// interface).
func Open(ifname string) (*Receiver, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("can: socket: %w", err)
	}

	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("can: InterfaceByName %q: %w", ifname, err)
	}

	addr := &unix.SockaddrCAN{Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("can: bind: %w", err)
	}

	return &Receiver{fd: fd, stopChan: make(chan struct{}), ifname: ifname}, nil
}

// Close stops the receiver and releases the socket.
func (r *Receiver) Close() error {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
	if r.fd == -1 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	return err
}

// Run blocks, reading frames until Close is called. onFrame is invoked
// with every decoded j1939 message; onRaw (optional) is invoked with
// every frame before decoding, for the raw-frame observer callback
// (spec.md §6).
func (r *Receiver) Run(onFrame func(j1939.Message), onRaw func(id uint32, data []byte)) {
	buf := make([]byte, frameSize)
	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, _, err := unix.Recvfrom(r.fd, buf, 0)
		if err != nil {
			select {
			case <-r.stopChan:
				return
			default:
			}
			log.Printf("can: recvfrom %s: %v", r.ifname, err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if n < frameSize {
			continue
		}

		rawID := binary.LittleEndian.Uint32(buf[0:4])
		length := buf[4]
		if length > 8 {
			length = 8
		}
		data := make([]byte, length)
		copy(data, buf[8:8+length])

		id := rawID &^ canEFFFlag
		if onRaw != nil {
			onRaw(id, data)
		}

		frame := j1939.Frame{ID: id, Data: data, TimestampMs: time.Now().UnixMilli()}
		if msg, ok := j1939.DecodeFrame(frame); ok {
			onFrame(msg)
		}
	}
}
