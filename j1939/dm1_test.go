package j1939

import "testing"

func TestParseDM1SingleFault(t *testing.T) {
	data := []byte{0x00, 0x10, 0x6E, 0x00, 0x00, 0x01, 0xFF, 0xFF}
	dst := make([]DTC, 4)
	lamps, codes := ParseDM1(data, 0x00, dst)

	if !lamps.Malfunction {
		t.Error("malfunction lamp should be on")
	}
	if lamps.Protect || lamps.AmberWarn || lamps.RedStop {
		t.Error("only the malfunction lamp should be on")
	}
	if len(codes) != 1 {
		t.Fatalf("len(codes) = %d, want 1", len(codes))
	}
	if codes[0].SPN != 110 || codes[0].FMI != 0 || codes[0].OccurrenceCount != 1 {
		t.Errorf("dtc = %+v, want spn=110 fmi=0 oc=1", codes[0])
	}
}

func TestParseDM1SkipsNoActiveFaultRecord(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	dst := make([]DTC, 4)
	_, codes := ParseDM1(data, 0x00, dst)
	if len(codes) != 0 {
		t.Errorf("len(codes) = %d, want 0 for spn=0 fmi=0", len(codes))
	}
}

func TestParseDM1CapsAtDestination(t *testing.T) {
	data := make([]byte, 2+4*3)
	for i := range data {
		data[i] = 0
	}
	// three distinct DTC records so none get skipped as "no fault"
	for i := 0; i < 3; i++ {
		off := 2 + i*4
		data[off] = byte(i + 1)
	}
	dst := make([]DTC, 2)
	_, codes := ParseDM1(data, 0x11, dst)
	if len(codes) != 2 {
		t.Fatalf("len(codes) = %d, want 2 (capped by destination capacity)", len(codes))
	}
}

func TestEncodeDecodeDTCRoundTrip(t *testing.T) {
	in := DTC{SPN: 0x7FFFF, FMI: 0x1F, OccurrenceCount: 0x7F, ConversionMethod: 1, SourceAddr: 0x42}
	wire := EncodeDTC(in)
	dst := make([]DTC, 1)
	data := append([]byte{0, 0}, wire[:]...)
	_, codes := ParseDM1(data, in.SourceAddr, dst)
	if len(codes) != 1 {
		t.Fatalf("expected one decoded record")
	}
	got := codes[0]
	if got.SPN != in.SPN || got.FMI != in.FMI || got.OccurrenceCount != in.OccurrenceCount || got.ConversionMethod != in.ConversionMethod {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, in)
	}
}
