package j1939

import "testing"

func TestDecodeFramePDU2(t *testing.T) {
	msg, ok := DecodeFrame(Frame{ID: 0x18FEEE00, Data: []byte{0, 0, 0, 0, 0, 0, 0, 0}})
	if !ok {
		t.Fatal("decode failed")
	}
	if msg.PGN != 65262 {
		t.Errorf("pgn = %d, want 65262", msg.PGN)
	}
	if msg.SourceAddr != 0x00 {
		t.Errorf("sa = 0x%02X, want 0x00", msg.SourceAddr)
	}
	if msg.Priority != 6 {
		t.Errorf("priority = %d, want 6", msg.Priority)
	}
	if msg.Destination != BroadcastDestination {
		t.Errorf("destination = 0x%02X, want 0xFF", msg.Destination)
	}
}

func TestDecodeFramePDU1(t *testing.T) {
	msg, ok := DecodeFrame(Frame{ID: 0x18EA00F9, Data: []byte{1}})
	if !ok {
		t.Fatal("decode failed")
	}
	if msg.PGN != 59904 {
		t.Errorf("pgn = %d, want 59904", msg.PGN)
	}
	if msg.SourceAddr != 0xF9 {
		t.Errorf("sa = 0x%02X, want 0xF9", msg.SourceAddr)
	}
	if msg.Priority != 6 {
		t.Errorf("priority = %d, want 6", msg.Priority)
	}
	if msg.Destination != 0x00 {
		t.Errorf("destination = 0x%02X, want 0x00", msg.Destination)
	}
}

func TestDecodeFrameRejectsBadPayload(t *testing.T) {
	if _, ok := DecodeFrame(Frame{ID: 0x18FEEE00, Data: nil}); ok {
		t.Error("nil payload should fail to decode")
	}
	if _, ok := DecodeFrame(Frame{ID: 0x18FEEE00, Data: make([]byte, 9)}); ok {
		t.Error("9-byte payload should fail to decode")
	}
	if _, ok := DecodeFrame(Frame{ID: 0x18FEEE00, Data: make([]byte, 0)}); ok {
		t.Error("empty payload should fail to decode")
	}
}

func TestBuildIDRoundTripsPDU2(t *testing.T) {
	for pgn := uint32(0); pgn < 1<<18; pgn += 9973 {
		for priority := byte(0); priority < 8; priority++ {
			id := BuildID(pgn, 0x42, priority)
			msg, ok := DecodeFrame(Frame{ID: id, Data: []byte{0}})
			if !ok {
				t.Fatalf("decode of built id failed for pgn=%d", pgn)
			}
			if msg.SourceAddr != 0x42 {
				t.Errorf("pgn=%d: sa = 0x%02X, want 0x42", pgn, msg.SourceAddr)
			}
			if msg.Priority != priority {
				t.Errorf("pgn=%d: priority = %d, want %d", pgn, msg.Priority, priority)
			}
			pf := byte(pgn >> 8)
			if pf >= 240 && msg.PGN != pgn {
				t.Errorf("PDU2 pgn round trip: got %d, want %d", msg.PGN, pgn)
			}
		}
	}
}
