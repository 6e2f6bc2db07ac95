// Package serial feeds bytes from a tty into a j1708.Framer, grounded
// on the teacher's readFrames/stopChan read-loop idiom
// (cmd/agent-j1587/bus.go) but driving a j1708.Framer byte-by-byte
// instead of accumulating a raw inter-frame-gap buffer by hand.
package serial

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/tarm/serial"

	"github.com/dkuznetsov/j1939dash/j1708"
)

const (
	defaultBaud       = 9600
	readTimeout       = 20 * time.Millisecond
	tickCheckInterval = 5 * time.Millisecond
)

// Reader drains a J1708 serial port through a Framer, emitting decoded
// messages and raw frames.
type Reader struct {
	port     *serial.Port
	framer   *j1708.Framer
	stopChan chan struct{}
}

// Open opens the named tty at the J1708 baud rate.
func Open(name string) (*Reader, error) {
	cfg := &serial.Config{Name: name, Baud: defaultBaud, ReadTimeout: readTimeout}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	return &Reader{port: port, framer: j1708.NewFramer(), stopChan: make(chan struct{})}, nil
}

// Close stops the reader and releases the port.
func (r *Reader) Close() error {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
	return r.port.Close()
}

// Run blocks, reading bytes until Close is called. onMessage is invoked
// for every message the framer closes; onRaw (optional) is invoked with
// every raw message's bytes for the raw-frame observer callback
// (spec.md §6).
func (r *Reader) Run(onMessage func(j1708.Message), onRaw func(mid byte, data []byte)) {
	buf := make([]byte, 64)
	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, err := r.port.Read(buf)
		now := time.Now().UnixMilli()

		if err != nil && err != io.EOF {
			log.Printf("serial: read error: %v", err)
		}

		if n == 0 {
			r.tick(now, onMessage, onRaw)
			continue
		}

		for i := 0; i < n; i++ {
			r.push(buf[i], now, onMessage, onRaw)
		}
	}
}

// tick closes out a message if the Framer's inter-byte gap has already
// elapsed with nothing new arriving (spec.md §4.4).
func (r *Reader) tick(nowMs int64, onMessage func(j1708.Message), onRaw func(byte, []byte)) {
	if msg, ready := r.framer.Tick(nowMs); ready {
		r.deliver(msg, onMessage, onRaw)
		r.framer.Take()
	}
}

// push feeds one byte to the Framer, retrying the byte if the Framer
// reports it was deferred (a gap-closing byte that must be resubmitted
// once the pending message is drained).
func (r *Reader) push(b byte, tsMs int64, onMessage func(j1708.Message), onRaw func(byte, []byte)) {
	msg, ready, consumed := r.framer.PushByte(b, tsMs)
	if consumed {
		return
	}
	if ready {
		// the gap closed a message; drain it and resubmit b fresh.
		r.deliver(msg, onMessage, onRaw)
		r.framer.Take()
		r.push(b, tsMs, onMessage, onRaw)
		return
	}
	// a message is pending and undrained: this byte is lost. The
	// framer should have been ticked/drained before more bytes arrived;
	// this only happens if the caller's tick cadence falls behind.
	log.Printf("serial: byte dropped while a framed message awaited draining")
}

func (r *Reader) deliver(msg j1708.Message, onMessage func(j1708.Message), onRaw func(byte, []byte)) {
	if onRaw != nil {
		onRaw(msg.MID, msg.Raw)
	}
	onMessage(msg)
}
