package j1939

import "github.com/dkuznetsov/j1939dash/bitfield"

// PGN values for the signal catalogue in this core (spec.md §4.1).
const (
	PGN_EEC1  uint32 = 61444 // Electronic Engine Controller 1
	PGN_EEC2  uint32 = 61443 // Electronic Engine Controller 2
	PGN_ET1   uint32 = 65262 // Engine Temperature 1
	PGN_EFLP1 uint32 = 65263 // Engine Fluid Level/Pressure 1
	PGN_CCVS  uint32 = 65265 // Cruise Control/Vehicle Speed
	PGN_LFE   uint32 = 65266 // Fuel Economy (Liquid)
	PGN_AMB   uint32 = 65269 // Ambient Conditions
	PGN_IC1   uint32 = 65270 // Inlet/Exhaust Conditions 1
	PGN_VEP1  uint32 = 65271 // Vehicle Electrical Power 1
	PGN_TRF1  uint32 = 65272 // Transmission Fluids 1
	PGN_DD    uint32 = 65276 // Dash Display
	PGN_HOURS uint32 = 65253 // Engine Hours, Revolutions
	PGN_ETC2  uint32 = 61445 // Electronic Transmission Controller 2
	PGN_DM1   uint32 = 65226 // Active diagnostic trouble codes
	PGN_TPCM  uint32 = 60416 // Transport protocol, connection management (BAM)
	PGN_TPDT  uint32 = 60160 // Transport protocol, data transfer
)

// Sentinels surfaced to a consumer when a signal is unavailable. The
// abstraction is "decode produces a physical value or unavailable";
// these are only meaningful at this public boundary, never stored in
// the parameter store (spec.md §9).
const (
	InvalidNonNegative = -1
	InvalidTemperature = -9999
	InvalidGear        = -126
)

// EngineSpeed decodes SPN 190 from an EEC1 payload: bytes 3-4, little
// endian, 0.125 rpm/bit.
func EngineSpeed(data []byte) (float64, bool) {
	if len(data) < 5 {
		return InvalidNonNegative, false
	}
	raw := bitfield.U16LE(data[3], data[4])
	if bitfield.Invalid16(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.125, true
}

// PedalPosition decodes SPN 91 from an EEC2 payload: byte 1, 0.4 %/bit.
func PedalPosition(data []byte) (float64, bool) {
	if len(data) < 2 {
		return InvalidNonNegative, false
	}
	raw := data[1]
	if bitfield.Invalid8(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.4, true
}

// CoolantTemp decodes SPN 110 from an ET1 payload: byte 0, 1 °C/bit, -40 offset.
func CoolantTemp(data []byte) (float64, bool) {
	if len(data) < 1 {
		return InvalidTemperature, false
	}
	raw := data[0]
	if bitfield.Invalid8(raw) {
		return InvalidTemperature, false
	}
	return float64(raw) - 40, true
}

// OilPressure decodes SPN 100 from an EFLP1 payload: byte 3, 4 kPa/bit.
func OilPressure(data []byte) (float64, bool) {
	if len(data) < 4 {
		return InvalidNonNegative, false
	}
	raw := data[3]
	if bitfield.Invalid8(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 4, true
}

// WheelSpeed decodes SPN 84 from a CCVS payload: bytes 1-2, little
// endian, 1/256 km/h per bit.
func WheelSpeed(data []byte) (float64, bool) {
	if len(data) < 3 {
		return InvalidNonNegative, false
	}
	raw := bitfield.U16LE(data[1], data[2])
	if bitfield.Invalid16(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) / 256, true
}

// FuelRate decodes SPN 183 from an LFE payload: bytes 0-1, little
// endian, 0.05 L/h per bit.
func FuelRate(data []byte) (float64, bool) {
	if len(data) < 2 {
		return InvalidNonNegative, false
	}
	raw := bitfield.U16LE(data[0], data[1])
	if bitfield.Invalid16(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.05, true
}

// AmbientTemp decodes SPN 171 from an AMB payload: bytes 3-4, little
// endian, 0.03125 °C/bit, -273 offset.
func AmbientTemp(data []byte) (float64, bool) {
	if len(data) < 5 {
		return InvalidTemperature, false
	}
	raw := bitfield.U16LE(data[3], data[4])
	if bitfield.Invalid16(raw) {
		return InvalidTemperature, false
	}
	return float64(raw)*0.03125 - 273, true
}

// BoostPressure decodes SPN 102 from an IC1 payload: byte 1, 2 kPa/bit.
func BoostPressure(data []byte) (float64, bool) {
	if len(data) < 2 {
		return InvalidNonNegative, false
	}
	raw := data[1]
	if bitfield.Invalid8(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 2, true
}

// BatteryVoltage decodes SPN 168 from a VEP1 payload: bytes 6-7, little
// endian, 0.05 V/bit.
func BatteryVoltage(data []byte) (float64, bool) {
	if len(data) < 8 {
		return InvalidNonNegative, false
	}
	raw := bitfield.U16LE(data[6], data[7])
	if bitfield.Invalid16(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.05, true
}

// TransOilTemp decodes SPN 177 from a TRF1 payload: bytes 4-5, little
// endian, 0.03125 °C/bit, -273 offset.
func TransOilTemp(data []byte) (float64, bool) {
	if len(data) < 6 {
		return InvalidTemperature, false
	}
	raw := bitfield.U16LE(data[4], data[5])
	if bitfield.Invalid16(raw) {
		return InvalidTemperature, false
	}
	return float64(raw)*0.03125 - 273, true
}

// FuelLevel decodes SPN 96 from a DD payload: byte 1, 0.4 %/bit.
func FuelLevel(data []byte) (float64, bool) {
	if len(data) < 2 {
		return InvalidNonNegative, false
	}
	raw := data[1]
	if bitfield.Invalid8(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.4, true
}

// EngineHours decodes SPN 247 from an HOURS payload: bytes 0-3, little
// endian, 0.05 h/bit. The 32-bit sentinel is all-ones.
func EngineHours(data []byte) (float64, bool) {
	if len(data) < 4 {
		return InvalidNonNegative, false
	}
	raw := bitfield.U32LE(data[0], data[1], data[2], data[3])
	if bitfield.Invalid32(raw) {
		return InvalidNonNegative, false
	}
	return float64(raw) * 0.05, true
}

// CurrentGear decodes SPN 523 from an ETC2 payload: byte 3, raw offset
// 125 (so raw 0 is -125, i.e. deepest reverse gear). The invalid marker
// is any raw value that also trips the 8-bit sentinel.
func CurrentGear(data []byte) (float64, bool) {
	if len(data) < 4 {
		return InvalidGear, false
	}
	raw := data[3]
	if bitfield.Invalid8(raw) {
		return InvalidGear, false
	}
	return float64(int(raw) - 125), true
}
