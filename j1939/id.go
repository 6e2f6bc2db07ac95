// Package j1939 decodes the SAE J1939 application layer: 29-bit CAN
// identifiers, the signal catalogue of decode.go,
// the Broadcast Announce transport protocol and DM1 diagnostics.
package j1939

// BroadcastDestination is the PDU2 destination sentinel: PDU2 traffic
// is always addressed to everyone.
const BroadcastDestination = 0xFF

// Frame is a received extended-identifier CAN frame, timestamped on a
// monotonic millisecond clock supplied by the host.
type Frame struct {
	ID        uint32 // 29-bit extended identifier
	Data      []byte // 1-8 payload bytes
	TimestampMs int64
}

// Message is a decoded J1939 application message: everything a signal
// decoder or the transport protocol needs, with the identifier already
// split into its PGN/SA/destination/priority components.
type Message struct {
	PGN         uint32
	SourceAddr  byte
	Destination byte
	Priority    byte
	Data        []byte
	TimestampMs int64
}

// DecodeFrame splits an extended CAN identifier and payload into a
// Message. It fails only on a null or out-of-range payload; unknown
// PGNs are returned as-is and simply find no signal decoder downstream.
func DecodeFrame(f Frame) (Message, bool) {
	if f.Data == nil || len(f.Data) < 1 || len(f.Data) > 8 {
		return Message{}, false
	}

	priority := byte(f.ID>>26) & 0x7
	// reserved (bit 25) and data page (bit 24): the top two bits of the
	// 18-bit PGN.
	dataPage := byte(f.ID>>24) & 0x3
	pf := byte(f.ID >> 16)
	ps := byte(f.ID >> 8)
	sa := byte(f.ID)

	var pgn uint32
	var dest byte
	if pf < 240 {
		// PDU1: unicast, PS carries the destination address.
		pgn = uint32(dataPage)<<16 | uint32(pf)<<8
		dest = ps
	} else {
		// PDU2: broadcast, PS is a group extension folded into the PGN.
		pgn = uint32(dataPage)<<16 | uint32(pf)<<8 | uint32(ps)
		dest = BroadcastDestination
	}

	return Message{
		PGN:         pgn,
		SourceAddr:  sa,
		Destination: dest,
		Priority:    priority,
		Data:        f.Data,
		TimestampMs: f.TimestampMs,
	}, true
}

// BuildID encodes a PGN, source address and priority into a 29-bit
// extended CAN identifier. The PGN is always written verbatim into the
// PF:PS field, which suits broadcast/PDU2 traffic; a caller that needs a
// PDU1 unicast frame must have pre-placed the destination into the PGN's
// low byte before calling BuildID.
func BuildID(pgn uint32, sa byte, priority byte) uint32 {
	dataPage := (pgn >> 16) & 0x3
	pf := byte(pgn >> 8)
	ps := byte(pgn)
	return uint32(priority&0x7)<<26 | uint32(dataPage)<<24 | uint32(pf)<<16 | uint32(ps)<<8 | uint32(sa)
}
