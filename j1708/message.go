package j1708

import "github.com/dkuznetsov/j1939dash/bitfield"

// DecodeMessage extracts the MID and parameter list from a framed
// message's raw bytes: the first byte is the MID, the last is the
// checksum, and everything between is a sequence of parameters
// (spec.md §4.4).
func DecodeMessage(msg Message) (mid byte, params []Parameter) {
	if len(msg.Raw) < minFrameLen {
		return 0, nil
	}
	mid = msg.Raw[0]
	body := msg.Raw[1 : len(msg.Raw)-1]
	return mid, ParseParameters(body)
}

// BuildMessage composes a J1708 frame from a MID and a single
// parameter, appending the correct checksum - the inverse of
// DecodeMessage for the common one-parameter case, used by tests and by
// any future command sender.
func BuildMessage(mid byte, pid byte, data []byte) []byte {
	frame := make([]byte, 0, 3+len(data))
	frame = append(frame, mid, pid)
	frame = append(frame, data...)
	cs := bitfield.MakeChecksum256(frame)
	return append(frame, cs)
}
