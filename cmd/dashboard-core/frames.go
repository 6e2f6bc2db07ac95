package main

import (
	"github.com/dkuznetsov/j1939dash/internal/telemetry"
	"github.com/dkuznetsov/j1939dash/j1708"
	"github.com/dkuznetsov/j1939dash/j1939"
	"github.com/dkuznetsov/j1939dash/paramstore"
	"github.com/dkuznetsov/j1939dash/persistence"
)

// dispatcher owns the decode-to-paramstore wiring shared by every bus
// source: both the CAN receiver and the serial reader funnel their
// decoded messages through it, the way the teacher's FrameProcessor
// sits between a single bus and its J1939Data (cmd/agent-j1939/frame_processor.go),
// generalized here to two protocols and a typed parameter store.
type dispatcher struct {
	store     *paramstore.Store
	persist   *persistence.Store
	counters  *telemetry.Counters
	transport *j1939.Transport

	maxDTCsPerFrame int
}

func newDispatcher(store *paramstore.Store, persist *persistence.Store, counters *telemetry.Counters) *dispatcher {
	return &dispatcher{
		store:           store,
		persist:         persist,
		counters:        counters,
		transport:       j1939.NewTransport(),
		maxDTCsPerFrame: 8,
	}
}

// OnCANFrame handles one decoded J1939 application message: transport
// protocol control frames are fed to the reassembler, everything else
// is decoded straight into the parameter store.
func (d *dispatcher) OnCANFrame(msg j1939.Message) {
	switch msg.PGN {
	case j1939.PGN_TPCM:
		d.transport.HandleBAM(msg.SourceAddr, msg.Data, msg.TimestampMs)
		return
	case j1939.PGN_TPDT:
		d.transport.HandleDataTransfer(msg.SourceAddr, msg.Data, msg.TimestampMs)
		if payload, pgn, ok := d.transport.Drain(msg.SourceAddr); ok {
			d.decodeJ1939(pgn, msg.SourceAddr, payload, msg.TimestampMs)
		}
		return
	}
	d.decodeJ1939(msg.PGN, msg.SourceAddr, msg.Data, msg.TimestampMs)
}

// ExpireStaleSessions should be called on a cadence by the CAN context
// to reclaim transport-protocol sessions nobody ever finished.
func (d *dispatcher) ExpireStaleSessions(nowMs int64) {
	before := d.transport.Abandoned()
	d.transport.ExpireStale(nowMs)
	if d.transport.Abandoned() > before {
		d.counters.IncTransportAbandoned()
	}
}

func (d *dispatcher) decodeJ1939(pgn uint32, sa byte, data []byte, tsMs int64) {
	set := func(id paramstore.Identity, v float64, ok bool) {
		if ok {
			d.store.Update(id, v, tsMs, paramstore.SourceJ1939)
		}
	}

	switch pgn {
	case j1939.PGN_EEC1:
		set(paramstore.EngineSpeed, j1939.EngineSpeed(data))
	case j1939.PGN_EEC2:
		set(paramstore.PedalPosition, j1939.PedalPosition(data))
	case j1939.PGN_ET1:
		set(paramstore.CoolantTemp, j1939.CoolantTemp(data))
	case j1939.PGN_EFLP1:
		set(paramstore.OilPressure, j1939.OilPressure(data))
	case j1939.PGN_CCVS:
		// CCVS carries wheel-based vehicle speed (SPN 84): the only speed
		// signal J1939 gives us, so it drives both identities - WheelSpeed
		// for its own sake, and VehicleSpeed so the default speed gauge
		// (which watches VehicleSpeed) isn't blind on a J1939-only bus.
		speedKmh, ok := j1939.WheelSpeed(data)
		set(paramstore.WheelSpeed, speedKmh, ok)
		set(paramstore.VehicleSpeed, speedKmh, ok)
	case j1939.PGN_LFE:
		set(paramstore.FuelRate, j1939.FuelRate(data))
	case j1939.PGN_IC1:
		set(paramstore.BoostPressure, j1939.BoostPressure(data))
	case j1939.PGN_VEP1:
		set(paramstore.BatteryVoltage, j1939.BatteryVoltage(data))
	case j1939.PGN_TRF1:
		set(paramstore.TransOilTemp, j1939.TransOilTemp(data))
	case j1939.PGN_DD:
		set(paramstore.FuelLevel1, j1939.FuelLevel(data))
	case j1939.PGN_HOURS:
		set(paramstore.EngineHours, j1939.EngineHours(data))
	case j1939.PGN_ETC2:
		set(paramstore.CurrentGear, j1939.CurrentGear(data))
	case j1939.PGN_AMB:
		set(paramstore.AmbientTemp, j1939.AmbientTemp(data))
	case j1939.PGN_DM1:
		d.handleDM1(sa, data, tsMs)
	default:
		if len(data) == 0 {
			d.counters.IncMalformedFrame()
		}
	}
}

func (d *dispatcher) handleDM1(sa byte, data []byte, tsMs int64) {
	if len(data) < 2 {
		d.counters.IncMalformedFrame()
		return
	}

	dst := make([]j1939.DTC, d.maxDTCsPerFrame)
	_, dtcs := j1939.ParseDM1(data, sa, dst)

	for _, dtc := range dtcs {
		if d.persist.StoreDTC(dtc.SPN, uint8(dtc.FMI), dtc.SourceAddr, tsMs, true) {
			d.counters.IncDTCHistoryEviction()
		}
	}
	d.store.Update(paramstore.ActiveDTCCount, float64(countActiveDTCs(d.persist.DTCHistory())), tsMs, paramstore.SourceComputed)
}

func countActiveDTCs(history []persistence.DTCEntry) int {
	n := 0
	for _, e := range history {
		if e.Active {
			n++
		}
	}
	return n
}

// OnJ1708Message handles one framed, checksum-valid J1587 message.
func (d *dispatcher) OnJ1708Message(msg j1708.Message) {
	if !msg.ChecksumValid {
		d.counters.IncMalformedFrame()
		return
	}

	_, params := j1708.DecodeMessage(msg)
	for _, p := range params {
		d.decodeJ1708Param(p, msg.TimestampMs)
	}
}

func (d *dispatcher) decodeJ1708Param(p j1708.Parameter, tsMs int64) {
	set := func(id paramstore.Identity, v float64, ok bool) {
		if ok {
			d.store.Update(id, v, tsMs, paramstore.SourceJ1708)
		}
	}

	switch p.PID {
	case j1708.PIDRoadSpeed:
		set(paramstore.VehicleSpeed, j1708.RoadSpeed(p.Data))
	case j1708.PIDFuelLevel:
		set(paramstore.FuelLevel1, j1708.FuelLevel(p.Data))
	case j1708.PIDOilPressure:
		set(paramstore.OilPressure, j1708.OilPressure(p.Data))
	case j1708.PIDCoolantTemp:
		set(paramstore.CoolantTemp, j1708.CoolantTemp(p.Data))
	case j1708.PIDBatteryVoltage:
		set(paramstore.BatteryVoltage, j1708.BatteryVoltage(p.Data))
	case j1708.PIDTransOilTemp:
		set(paramstore.TransOilTemp, j1708.TransOilTemp(p.Data))
	case j1708.PIDEngineSpeed:
		set(paramstore.EngineSpeed, j1708.EngineSpeed(p.Data))
	case j1708.PIDActiveDTC:
		d.handleJ1587Diagnostics(p.Data, tsMs, true)
	case j1708.PIDPreviouslyActiveDTC:
		d.handleJ1587Diagnostics(p.Data, tsMs, false)
	}
}

func (d *dispatcher) handleJ1587Diagnostics(data []byte, tsMs int64, active bool) {
	entries := j1708.ParseDiagnostics(data)
	for _, e := range entries {
		if d.persist.StoreDTC(uint32(e.ID), e.FMI, 0, tsMs, active) {
			d.counters.IncDTCHistoryEviction()
		}
	}
	if len(entries) > 0 {
		d.store.Update(paramstore.ActiveDTCCount, float64(countActiveDTCs(d.persist.DTCHistory())), tsMs, paramstore.SourceComputed)
	}
}
