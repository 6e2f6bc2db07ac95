package j1939

import "testing"

func TestEngineSpeedDecode(t *testing.T) {
	rpm, ok := EngineSpeed([]byte{0x00, 0x7D, 0x7D, 0x80, 0x3E, 0x00, 0x00, 0x00})
	if !ok {
		t.Fatal("decode should be valid")
	}
	if rpm != 2000.0 {
		t.Errorf("rpm = %v, want 2000.0", rpm)
	}
}

func TestCoolantTempDecode(t *testing.T) {
	c, ok := CoolantTemp([]byte{0x8C, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if !ok {
		t.Fatal("decode should be valid")
	}
	if c != 100.0 {
		t.Errorf("temp = %v, want 100.0", c)
	}
}

func TestWheelSpeedDecode(t *testing.T) {
	kmh, ok := WheelSpeed([]byte{0xFF, 0x00, 0x69, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if !ok {
		t.Fatal("decode should be valid")
	}
	if kmh != 105.0 {
		t.Errorf("speed = %v, want 105.0", kmh)
	}
}

func TestCurrentGearDecode(t *testing.T) {
	cases := []struct {
		b3   byte
		want float64
	}{
		{0x7C, -1}, // reverse
		{0x7D, 0},  // neutral
		{0x85, 8},
	}
	for _, c := range cases {
		gear, ok := CurrentGear([]byte{0, 0, 0, c.b3})
		if !ok {
			t.Fatalf("decode should be valid for byte3=0x%02X", c.b3)
		}
		if gear != c.want {
			t.Errorf("byte3=0x%02X: gear = %v, want %v", c.b3, gear, c.want)
		}
	}
}

func TestSignalsReportInvalidOnSentinel(t *testing.T) {
	if _, ok := EngineSpeed([]byte{0, 0, 0, 0xFF, 0xFE, 0, 0, 0}); ok {
		t.Error("engine speed should be invalid on 16-bit sentinel")
	}
	if _, ok := CoolantTemp([]byte{0xFE}); ok {
		t.Error("coolant temp should be invalid on 0xFE")
	}
	if _, ok := EngineHours([]byte{0xFF, 0xFF, 0xFF, 0xFF}); ok {
		t.Error("engine hours should be invalid on all-ones")
	}
}

func TestSignalScaleOffsetIdempotence(t *testing.T) {
	// re-encoding a decoded value through (value-offset)/scale reproduces
	// the raw within one least significant bit.
	raw := uint16(16000)
	value := float64(raw) * 0.125
	reencoded := value / 0.125
	if diff := reencoded - float64(raw); diff < -1 || diff > 1 {
		t.Errorf("idempotence violated: raw=%d reencoded=%v", raw, reencoded)
	}
}
