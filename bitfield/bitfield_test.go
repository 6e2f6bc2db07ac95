package bitfield

import "testing"

func TestU16LE(t *testing.T) {
	if got := U16LE(0x7D, 0x7D); got != 0x7D7D {
		t.Fatalf("U16LE = 0x%04X, want 0x7D7D", got)
	}
}

func TestU32LE(t *testing.T) {
	if got := U32LE(0x01, 0x00, 0x00, 0x00); got != 1 {
		t.Fatalf("U32LE = %d, want 1", got)
	}
}

func TestPutU16LERoundTrip(t *testing.T) {
	lo, hi := PutU16LE(0x1234)
	if got := U16LE(lo, hi); got != 0x1234 {
		t.Fatalf("round trip = 0x%04X, want 0x1234", got)
	}
}

func TestPutU32LERoundTrip(t *testing.T) {
	b0, b1, b2, b3 := PutU32LE(0xDEADBEEF)
	if got := U32LE(b0, b1, b2, b3); got != 0xDEADBEEF {
		t.Fatalf("round trip = 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestInvalid8(t *testing.T) {
	cases := map[byte]bool{0x00: false, 0xFD: false, 0xFE: true, 0xFF: true}
	for raw, want := range cases {
		if got := Invalid8(raw); got != want {
			t.Errorf("Invalid8(0x%02X) = %v, want %v", raw, got, want)
		}
	}
}

func TestInvalid16(t *testing.T) {
	cases := map[uint16]bool{0x0000: false, 0xFDFF: false, 0xFE00: true, 0xFFFF: true}
	for raw, want := range cases {
		if got := Invalid16(raw); got != want {
			t.Errorf("Invalid16(0x%04X) = %v, want %v", raw, got, want)
		}
	}
}

func TestInvalid32(t *testing.T) {
	if Invalid32(0x12345678) {
		t.Error("Invalid32 false positive")
	}
	if !Invalid32(0xFFFFFFFF) {
		t.Error("Invalid32 should flag all-ones")
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	payload := []byte{128, 110, 212}
	cs := MakeChecksum256(payload)
	framed := append(append([]byte{}, payload...), cs)
	if Checksum256(framed) != 0 {
		t.Fatalf("checksum round trip failed: sum=%d", Checksum256(framed))
	}
}
