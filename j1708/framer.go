// Package j1708 implements the SAE J1708 byte-stream framer and the
// SAE J1587 parameter decoder that rides on top of it (spec.md §4.4).
package j1708

import "github.com/dkuznetsov/j1939dash/bitfield"

// interByteGapMs is the framer's silence threshold. The physical layer
// guarantees an inter-byte gap of at most 2 bit times within a message;
// 10ms is the safety margin the framer actually uses (spec.md §4.4).
const interByteGapMs = 10

// maxFrameLen is the largest raw J1708 frame the framer buffers,
// including the trailing checksum byte (spec.md §3).
const maxFrameLen = 21

// minFrameLen is the smallest valid frame: MID + checksum.
const minFrameLen = 2

type framerState int

const (
	framerIdle framerState = iota
	framerReceiving
	framerComplete
)

// Message is a framed, checksum-validated J1708 message (spec.md §3).
type Message struct {
	MID           byte
	Raw           []byte // all bytes including the trailing checksum
	ChecksumValid bool
	TimestampMs   int64
}

// Framer assembles raw serial bytes into Messages by detecting
// inter-byte silence, per spec.md §4.4. It is driven one byte at a time
// and is not safe for concurrent use.
type Framer struct {
	state       framerState
	buf         []byte
	lastByteMs  int64
	pendingMsg  Message
	havePending bool
	parseErrors uint64
}

// NewFramer returns an idle framer.
func NewFramer() *Framer {
	return &Framer{}
}

// ParseErrors returns the number of frames dropped to a bad checksum, a
// too-short frame or a buffer overflow since the framer was created
// (spec.md §7).
func (f *Framer) ParseErrors() uint64 {
	return f.parseErrors
}

// PushByte feeds one received byte at timestamp tsMs.
//
// ready is true when closing the gap produced a complete message - in
// that case consumed is false: b belongs to the *next* message and the
// caller must Take() the pending message and re-submit b. While a
// message is pending (state complete), PushByte blocks every byte the
// same way (ready=false, consumed=false) until the caller drains it,
// so a completed message is never lost or overwritten.
func (f *Framer) PushByte(b byte, tsMs int64) (msg Message, ready bool, consumed bool) {
	if f.state == framerComplete {
		return Message{}, false, false
	}

	if f.state == framerReceiving && tsMs-f.lastByteMs > interByteGapMs {
		if m, ok := f.terminateCurrent(tsMs); ok {
			return m, true, false
		}
		// buffer was too short to be a message: discarded, restart below.
	}

	if len(f.buf) >= maxFrameLen {
		f.buf = f.buf[:0]
		f.state = framerIdle
		f.parseErrors++
	}

	f.buf = append(f.buf, b)
	f.lastByteMs = tsMs
	f.state = framerReceiving
	return Message{}, false, true
}

// Tick notifies the framer of the passage of time with no new byte
// arriving, closing out a trailing message when the bus falls silent at
// the end of traffic. Safe to call frequently; it only has an effect
// once the gap has actually elapsed.
func (f *Framer) Tick(nowMs int64) (Message, bool) {
	if f.state != framerReceiving {
		return Message{}, false
	}
	if nowMs-f.lastByteMs <= interByteGapMs {
		return Message{}, false
	}
	return f.terminateCurrent(nowMs)
}

// terminateCurrent closes the buffer accumulated so far: if it is long
// enough and checksums, it becomes the pending complete message;
// otherwise it's discarded and counted as a parse error.
func (f *Framer) terminateCurrent(tsMs int64) (Message, bool) {
	defer func() { f.buf = f.buf[:0] }()

	if len(f.buf) < minFrameLen {
		f.state = framerIdle
		if len(f.buf) > 0 {
			f.parseErrors++
		}
		return Message{}, false
	}

	if bitfield.Checksum256(f.buf) != 0 {
		f.parseErrors++
		f.state = framerIdle
		return Message{}, false
	}

	raw := make([]byte, len(f.buf))
	copy(raw, f.buf)
	msg := Message{
		MID:           raw[0],
		Raw:           raw,
		ChecksumValid: true,
		TimestampMs:   tsMs,
	}
	f.state = framerComplete
	f.pendingMsg = msg
	f.havePending = true
	return msg, true
}

// Take drains the pending complete message, if any, returning the
// framer to idle so byte reception can resume.
func (f *Framer) Take() (Message, bool) {
	if !f.havePending {
		return Message{}, false
	}
	f.havePending = false
	f.state = framerIdle
	return f.pendingMsg, true
}
