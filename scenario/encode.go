package scenario

import (
	"github.com/dkuznetsov/j1939dash/bitfield"
	"github.com/dkuznetsov/j1939dash/j1939"
)

// SourceAddr is the simulated engine ECU's source address used to build
// every emitted frame's CAN identifier.
const SourceAddr byte = 0x00

const framePriority = 6

// RawFrame is one simulated CAN frame ready for a transport.can-shaped
// consumer: a 29-bit identifier plus payload.
type RawFrame struct {
	ID          uint32
	Data        []byte
	TimestampMs int64
}

func fill8(v float64, scale float64) byte {
	raw := int(v / scale)
	if raw < 0 {
		raw = 0
	}
	if raw > 0xFB {
		raw = 0xFB
	}
	return byte(raw)
}

func fill16(v float64, scale float64) uint16 {
	raw := int64(v / scale)
	if raw < 0 {
		raw = 0
	}
	if raw > 0xFAFF {
		raw = 0xFAFF
	}
	return uint16(raw)
}

// Encode builds the wire payload for the named signal group from the
// generator's current state, mirroring the decode layouts in
// j1939/decode.go byte-for-byte.
func (g *Generator) Encode(group string) (RawFrame, bool) {
	s := g.state
	data := make([]byte, 8)
	var pgn uint32

	switch group {
	case "EEC1":
		pgn = j1939.PGN_EEC1
		raw := fill16(s.EngineRPM, 0.125)
		data[3], data[4] = bitfield.PutU16LE(raw)
	case "EEC2":
		pgn = j1939.PGN_EEC2
		data[1] = fill8(s.PedalPct, 0.4)
	case "ET1":
		pgn = j1939.PGN_ET1
		data[0] = byte(int(s.CoolantTempC) + 40)
	case "EFLP1":
		pgn = j1939.PGN_EFLP1
		data[3] = fill8(s.OilPressureKPa, 4)
	case "CCVS":
		pgn = j1939.PGN_CCVS
		raw := fill16(s.WheelSpeedKmh, 1.0/256)
		data[1], data[2] = bitfield.PutU16LE(raw)
	case "LFE":
		pgn = j1939.PGN_LFE
		raw := fill16(s.FuelRateLph, 0.05)
		data[0], data[1] = bitfield.PutU16LE(raw)
	case "AMB":
		pgn = j1939.PGN_AMB
		raw := fill16(s.AmbientTempC+273, 0.03125)
		data[3], data[4] = bitfield.PutU16LE(raw)
	case "IC1":
		pgn = j1939.PGN_IC1
		data[1] = fill8(s.BoostKPa, 2)
	case "VEP1":
		pgn = j1939.PGN_VEP1
		raw := fill16(s.BatteryV, 0.05)
		data[6], data[7] = bitfield.PutU16LE(raw)
	case "TRF1":
		pgn = j1939.PGN_TRF1
		raw := fill16(s.TransOilTempC+273, 0.03125)
		data[4], data[5] = bitfield.PutU16LE(raw)
	case "DD":
		pgn = j1939.PGN_DD
		data[1] = fill8(s.FuelLevelPct, 0.4)
	case "HOURS":
		pgn = j1939.PGN_HOURS
		raw := uint32(s.EngineHours / 0.05)
		data[0], data[1], data[2], data[3] = bitfield.PutU32LE(raw)
	case "ETC2":
		pgn = j1939.PGN_ETC2
		data[3] = byte(s.Gear + 125)
	case "DM1":
		return g.encodeDM1(), true
	default:
		return RawFrame{}, false
	}

	id := j1939.BuildID(pgn, SourceAddr, framePriority)
	return RawFrame{ID: id, Data: data, TimestampMs: g.nowMs}, true
}

func (g *Generator) encodeDM1() RawFrame {
	data := make([]byte, 2, 6)
	if g.state.FaultActive {
		data[0] = 1 << 4 // amber warning lamp on
		rec := j1939.EncodeDTC(j1939.DTC{
			SPN: g.state.FaultSPN,
			FMI: g.state.FaultFMI,
		})
		data = append(data, rec[:]...)
	}
	id := j1939.BuildID(j1939.PGN_DM1, SourceAddr, framePriority)
	return RawFrame{ID: id, Data: data, TimestampMs: g.nowMs}
}

// Emit advances the simulated clock by deltaMs and invokes onFrame for
// every signal group due at the new time, in the same raw-frame shape
// a real transport receiver would deliver (spec.md §6).
func (g *Generator) Emit(deltaMs int64, onFrame func(RawFrame)) {
	g.Advance(deltaMs)
	for _, group := range g.Due() {
		if frame, ok := g.Encode(group); ok {
			onFrame(frame)
		}
	}
}
