package j1708

import "testing"

func TestRoadSpeedDecode(t *testing.T) {
	kmh, ok := RoadSpeed([]byte{120})
	if !ok {
		t.Fatal("decode should succeed")
	}
	if diff := kmh - 96.56; diff < -0.1 || diff > 0.1 {
		t.Errorf("speed = %v, want ~96.56", kmh)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	frame := BuildMessage(128, 110, []byte{212})
	if len(frame) != 4 {
		t.Fatalf("len(frame) = %d, want 4 (mid+pid+data+checksum)", len(frame))
	}

	f := NewFramer()
	for i, b := range frame {
		f.PushByte(b, int64(i))
	}
	msg, ready, _ := f.PushByte(0xAA, 100)
	if !ready {
		t.Fatal("message should close on the gap")
	}

	mid, params := DecodeMessage(msg)
	if mid != 128 {
		t.Errorf("mid = %d, want 128", mid)
	}
	if len(params) != 1 || params[0].PID != 110 || params[0].Data[0] != 212 {
		t.Fatalf("params = %+v", params)
	}
}

func TestParseParametersFixedWidth(t *testing.T) {
	body := []byte{PIDCoolantTemp, 100, PIDEngineSpeed, 0x10, 0x03}
	params := ParseParameters(body)
	if len(params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(params))
	}
	if params[0].PID != PIDCoolantTemp || params[0].Data[0] != 100 {
		t.Errorf("first param = %+v", params[0])
	}
	if params[1].PID != PIDEngineSpeed || len(params[1].Data) != 2 {
		t.Errorf("second param = %+v", params[1])
	}
}

func TestParseParametersExtendedBandUsesLengthPrefix(t *testing.T) {
	body := []byte{200, 3, 0xAA, 0xBB, 0xCC}
	params := ParseParameters(body)
	if len(params) != 1 {
		t.Fatalf("len(params) = %d, want 1", len(params))
	}
	if params[0].PID != 200 || len(params[0].Data) != 3 {
		t.Fatalf("param = %+v", params[0])
	}
}

func TestParseParametersStopsOnTruncation(t *testing.T) {
	body := []byte{PIDEngineSpeed, 0x01} // claims 2 bytes, only 1 present
	params := ParseParameters(body)
	if len(params) != 0 {
		t.Fatalf("len(params) = %d, want 0 on truncated trailing parameter", len(params))
	}
}

func TestParseDiagnostics(t *testing.T) {
	data := []byte{0x80 | 12, 0x05, 45, 0x02}
	entries := ParseDiagnostics(data)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if !entries[0].IsSubsystem || entries[0].ID != 12 || entries[0].FMI != 5 {
		t.Errorf("entry[0] = %+v", entries[0])
	}
	if entries[1].IsSubsystem || entries[1].ID != 45 || entries[1].FMI != 2 {
		t.Errorf("entry[1] = %+v", entries[1])
	}
}
