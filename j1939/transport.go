package j1939

import "fmt"

// sessionState is the Broadcast Announce session state per spec.md §4.2.
type sessionState int

const (
	sessionIdle sessionState = iota
	sessionReceiving
	sessionComplete
	sessionError
)

// maxPayloadSize is the largest multi-packet payload the transport
// protocol reassembles (spec.md §3: total size ≤ 1785).
const maxPayloadSize = 1785

// interPacketTimeoutMs is the inter-packet silence that aborts a
// receiving session (spec.md §4.2).
const interPacketTimeoutMs = 750

// maxConcurrentSessions bounds the number of source addresses the
// transport protocol tracks simultaneously (spec.md §4.2: "at least 4").
const maxConcurrentSessions = 4

// session is a single source address's Broadcast Announce reassembly
// state. Owned exclusively by the CAN receiver context (spec.md §5) -
// no locking here by design.
type session struct {
	state          sessionState
	sourceAddr     byte
	targetPGN      uint32
	totalSize      int
	expectedPkts   int
	receivedPkts   int
	buffer         [maxPayloadSize]byte
	lastPacketTsMs int64
	active         bool
}

// Transport tracks Broadcast Announce sessions across source
// addresses, per spec.md §4.2. It is not safe for concurrent use - the
// spec assigns exclusive ownership to the CAN receiver context (§5).
type Transport struct {
	sessions  [maxConcurrentSessions]session
	abandoned uint64
}

// NewTransport returns a transport protocol tracker with no active
// sessions.
func NewTransport() *Transport {
	return &Transport{}
}

// Abandoned returns the number of sessions abandoned to a sequence
// error or inter-packet timeout since the transport was created
// (spec.md §7).
func (tp *Transport) Abandoned() uint64 {
	return tp.abandoned
}

func (tp *Transport) find(sa byte) *session {
	for i := range tp.sessions {
		if tp.sessions[i].active && tp.sessions[i].sourceAddr == sa {
			return &tp.sessions[i]
		}
	}
	return nil
}

func (tp *Transport) freeSlot() *session {
	for i := range tp.sessions {
		if !tp.sessions[i].active {
			return &tp.sessions[i]
		}
	}
	return nil
}

// HandleBAM processes a Broadcast Announce control frame (PGN 60416,
// control byte 0x20): byte 0 = 0x20, bytes 1-2 = total size LE, byte 3
// = total packets, byte 4 ignored, bytes 5-7 = target PGN LE.
//
// Any prior session for sa is discarded. A fifth announce for a new sa
// while all slots are busy is silently dropped (spec.md §4.2, §7).
func (tp *Transport) HandleBAM(sa byte, data []byte, nowMs int64) {
	if len(data) < 8 || data[0] != 0x20 {
		return
	}

	s := tp.find(sa)
	if s == nil {
		s = tp.freeSlot()
		if s == nil {
			return // resource exhaustion: drop the announce, spec.md §7
		}
	}

	totalSize := int(data[1]) | int(data[2])<<8
	if totalSize > maxPayloadSize {
		totalSize = maxPayloadSize
	}
	targetPGN := uint32(data[5]) | uint32(data[6])<<8 | uint32(data[7])<<16

	*s = session{
		state:          sessionReceiving,
		sourceAddr:     sa,
		targetPGN:      targetPGN,
		totalSize:      totalSize,
		expectedPkts:   int(data[3]),
		receivedPkts:   0,
		lastPacketTsMs: nowMs,
		active:         true,
	}
	for i := range s.buffer {
		s.buffer[i] = 0xFF
	}
}

// HandleDataTransfer processes a Data Transfer frame (PGN 60160): byte
// 0 is the 1-based sequence number, bytes 1-7 are payload. A sequence
// mismatch or an inter-packet gap beyond 750ms moves the session to
// error and the frame is dropped; no retransmit request is sent
// (broadcast has none).
func (tp *Transport) HandleDataTransfer(sa byte, data []byte, nowMs int64) {
	s := tp.find(sa)
	if s == nil || s.state != sessionReceiving || len(data) < 1 {
		return
	}

	if nowMs-s.lastPacketTsMs > interPacketTimeoutMs {
		s.state = sessionError
		s.active = false
		tp.abandoned++
		return
	}

	seq := int(data[0])
	if seq != s.receivedPkts+1 {
		s.state = sessionError
		s.active = false
		tp.abandoned++
		return
	}

	payload := data[1:]
	offset := (seq - 1) * 7
	n := len(payload)
	if offset+n > s.totalSize {
		n = s.totalSize - offset
	}
	if n > 0 && offset+n <= len(s.buffer) {
		copy(s.buffer[offset:offset+n], payload[:n])
	}

	s.receivedPkts++
	s.lastPacketTsMs = nowMs

	if s.receivedPkts == s.expectedPkts {
		s.state = sessionComplete
	}
}

// Drain returns the reassembled payload for a completed session and
// releases its slot back to idle. The returned bool is false if sa has
// no completed session.
func (tp *Transport) Drain(sa byte) (payload []byte, targetPGN uint32, ok bool) {
	s := tp.find(sa)
	if s == nil || s.state != sessionComplete {
		return nil, 0, false
	}
	out := make([]byte, s.totalSize)
	copy(out, s.buffer[:s.totalSize])
	pgn := s.targetPGN
	s.active = false
	s.state = sessionIdle
	return out, pgn, true
}

// ExpireStale moves any receiving session whose last packet is older
// than the inter-packet timeout into error and frees its slot. Intended
// to be called on a cadence by the CAN receiver context so sessions
// that never receive another frame don't linger forever.
func (tp *Transport) ExpireStale(nowMs int64) {
	for i := range tp.sessions {
		s := &tp.sessions[i]
		if s.active && s.state == sessionReceiving && nowMs-s.lastPacketTsMs > interPacketTimeoutMs {
			s.state = sessionError
			s.active = false
			tp.abandoned++
		}
	}
}

func (tp *Transport) String() string {
	return fmt.Sprintf("Transport{sessions=%d}", len(tp.sessions))
}
