package j1708

// Parameter is a single decoded J1587 parameter: a PID and its raw
// data bytes, capped at 8 bytes (spec.md §3).
type Parameter struct {
	PID  byte
	Data []byte
}

// fixedWidth is the J1587 PID length catalogue (spec.md §4.4): PIDs
// known here take their width verbatim with no length prefix, including
// 245 and 247 from the 192-254 extended band. Anything else - including
// every other PID of that band - reads an explicit length byte
// immediately after the PID.
var fixedWidth = map[byte]int{
	PIDRoadSpeed:      1,
	PIDEngineLoad:     1,
	PIDFuelLevel:      1,
	PIDOilPressure:    1,
	PIDCoolantTemp:    1,
	PIDBatteryVoltage: 1,
	PIDAmbientTemp:    1,
	PIDTransOilTemp:   2,
	PIDFuelRate:       2,
	PIDEngineSpeed:    2,
	PIDTotalDistance:  4,
	PIDEngineHours:    4,
}

// J1587 parameter identifiers decoded by this core (spec.md §4.4).
const (
	PIDRoadSpeed           = 84
	PIDEngineLoad          = 92
	PIDFuelLevel           = 96
	PIDOilPressure         = 100
	PIDCoolantTemp         = 110
	PIDBatteryVoltage      = 168
	PIDAmbientTemp         = 171
	PIDTransOilTemp        = 177
	PIDFuelRate            = 183
	PIDEngineSpeed         = 190
	PIDTotalDistance       = 245
	PIDEngineHours         = 247
	PIDActiveDTC           = 194
	PIDPreviouslyActiveDTC = 195
)

const maxParamDataLen = 8

// ParseParameters walks the byte sequence between the MID and the
// trailing checksum, emitting one Parameter per PID found. It stops and
// returns what it has as soon as the remaining bytes can't satisfy the
// next parameter's length, per spec.md §4.4 step 3 - this is not an
// error, just a silent truncation.
func ParseParameters(body []byte) []Parameter {
	var params []Parameter
	i := 0
	for i < len(body) {
		pid := body[i]
		i++

		width, known := fixedWidth[pid]
		if !known {
			if i >= len(body) {
				break
			}
			width = int(body[i])
			i++
		}

		if i+width > len(body) {
			break
		}

		n := width
		if n > maxParamDataLen {
			n = maxParamDataLen
		}
		data := make([]byte, n)
		copy(data, body[i:i+n])
		params = append(params, Parameter{PID: pid, Data: data})
		i += width
	}
	return params
}

// RoadSpeed decodes PID 84: 0.5 mi/h per bit, converted to km/h.
func RoadSpeed(data []byte) (float64, bool) {
	if len(data) < 1 {
		return 0, false
	}
	mph := float64(data[0]) * 0.5
	return mph * 1.60934, true
}

// FuelLevel decodes PID 96: 0.5 %/bit.
func FuelLevel(data []byte) (float64, bool) {
	if len(data) < 1 {
		return 0, false
	}
	return float64(data[0]) * 0.5, true
}

// OilPressure decodes PID 100: 4 kPa/bit.
func OilPressure(data []byte) (float64, bool) {
	if len(data) < 1 {
		return 0, false
	}
	return float64(data[0]) * 4, true
}

// CoolantTemp decodes PID 110: 1 °F/bit, converted to °C.
func CoolantTemp(data []byte) (float64, bool) {
	if len(data) < 1 {
		return 0, false
	}
	f := float64(data[0])
	return (f - 32) * 5 / 9, true
}

// BatteryVoltage decodes PID 168: 0.05 V/bit.
func BatteryVoltage(data []byte) (float64, bool) {
	if len(data) < 1 {
		return 0, false
	}
	return float64(data[0]) * 0.05, true
}

// TransOilTemp decodes PID 177: 2 bytes little endian, 0.25 °C/bit,
// -273 offset. (spec.md §9 records this as the chosen interpretation
// where the upstream documentation disagreed with itself.)
func TransOilTemp(data []byte) (float64, bool) {
	if len(data) < 2 {
		return 0, false
	}
	raw := uint16(data[0]) | uint16(data[1])<<8
	return float64(raw)*0.25 - 273, true
}

// EngineSpeed decodes PID 190: 2 bytes little endian, 0.25 rpm/bit.
func EngineSpeed(data []byte) (float64, bool) {
	if len(data) < 2 {
		return 0, false
	}
	raw := uint16(data[0]) | uint16(data[1])<<8
	return float64(raw) * 0.25, true
}

// DiagnosticEntry is one 2-byte entry of a PID 194/195 diagnostic list
// (spec.md §4.4).
type DiagnosticEntry struct {
	IsSubsystem bool
	ID          byte
	FMI         byte
	OccurrenceCount int
}

// ParseDiagnostics decodes a PID 194/195 payload into its fixed-size
// 2-byte entries; a short trailing entry is dropped.
func ParseDiagnostics(data []byte) []DiagnosticEntry {
	var out []DiagnosticEntry
	for i := 0; i+1 < len(data); i += 2 {
		idByte, fmiByte := data[i], data[i+1]
		out = append(out, DiagnosticEntry{
			IsSubsystem:     idByte&0x80 != 0,
			ID:              idByte &^ 0x80,
			FMI:             fmiByte & 0x0F,
			OccurrenceCount: 1,
		})
	}
	return out
}
