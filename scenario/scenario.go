// Package scenario is the deterministic test-data generator: an
// external collaborator (spec.md §1, §6) used to exercise the decoder
// core without a vehicle. It is specified only at its boundary - select
// a named scenario, advance time, read simulated state, force-inject a
// DTC - and emits frames through the same raw-frame callback shape a
// real bus source would use.
package scenario

import "math/rand"

// Name selects one of the canned driving scenarios (spec.md §6).
type Name string

const (
	Idle         Name = "idle"
	Highway      Name = "highway"
	City         Name = "city"
	ColdStart    Name = "cold_start"
	Acceleration Name = "acceleration"
	FaultInject  Name = "fault_injection"
)

// VehicleState is the simulated truck state the generator advances and
// encodes into bus frames.
type VehicleState struct {
	EngineRPM      float64
	CoolantTempC   float64
	OilPressureKPa float64
	VehicleSpeedKmh float64
	WheelSpeedKmh  float64
	PedalPct       float64
	FuelLevelPct   float64
	FuelRateLph    float64
	BoostKPa       float64
	BatteryV       float64
	AmbientTempC   float64
	TransOilTempC  float64
	Gear           int
	EngineHours    float64

	FaultActive bool
	FaultSPN    uint32
	FaultFMI    byte
}

// Generator advances a VehicleState according to a selected scenario
// and a deterministic PRNG, and tracks per-PGN emission cadence so a
// driver loop knows when each signal group is due to be sent.
type Generator struct {
	name  Name
	rng   *rand.Rand
	state VehicleState
	nowMs int64

	periods     map[string]int64
	lastEmitted map[string]int64
}

// defaultPeriodsMs are the per-PGN emission periods (spec.md §6).
var defaultPeriodsMs = map[string]int64{
	"EEC1": 10, "EEC2": 50, "CCVS": 100, "LFE": 100, "ETC2": 100,
	"ET1": 1000, "EFLP1": 1000, "IC1": 1000, "TRF1": 1000, "HOURS": 1000,
	"VEP1": 1000, "DD": 1000,
}

const (
	dm1PeriodActiveMs   = 1000
	dm1PeriodInactiveMs = 5000
)

// New constructs a Generator for the named scenario with the given
// seed, starting at simulated time 0.
func New(name Name, seed int64) *Generator {
	g := &Generator{
		name:        name,
		rng:         rand.New(rand.NewSource(seed)),
		periods:     make(map[string]int64, len(defaultPeriodsMs)),
		lastEmitted: make(map[string]int64, len(defaultPeriodsMs)+1),
	}
	for k, v := range defaultPeriodsMs {
		g.periods[k] = v
	}
	g.state = initialState(name)
	return g
}

// SetPeriod overrides the emission period, in ms, for a named signal
// group (spec.md §6: "configurable per-PGN emission periods").
func (g *Generator) SetPeriod(group string, periodMs int64) {
	g.periods[group] = periodMs
}

// State returns a copy of the current simulated vehicle state.
func (g *Generator) State() VehicleState {
	return g.state
}

// ForceDTC injects an active fault at the current time, switching DM1
// emission to its active cadence.
func (g *Generator) ForceDTC(spn uint32, fmi byte) {
	g.state.FaultActive = true
	g.state.FaultSPN = spn
	g.state.FaultFMI = fmi
}

// ClearDTC clears the forced fault.
func (g *Generator) ClearDTC() {
	g.state.FaultActive = false
}

func initialState(name Name) VehicleState {
	base := VehicleState{
		EngineRPM: 700, CoolantTempC: 20, OilPressureKPa: 200,
		FuelLevelPct: 75, BatteryV: 13.8, AmbientTempC: 22,
		TransOilTempC: 20, Gear: 0, BoostKPa: 0,
	}
	switch name {
	case Highway:
		base.EngineRPM, base.VehicleSpeedKmh, base.WheelSpeedKmh = 1800, 100, 100
		base.Gear, base.CoolantTempC, base.BoostKPa = 8, 90, 80
	case City:
		base.EngineRPM, base.VehicleSpeedKmh, base.WheelSpeedKmh = 1200, 40, 40
		base.Gear, base.CoolantTempC = 4, 85
	case ColdStart:
		base.EngineRPM, base.CoolantTempC = 900, -10
	case Acceleration:
		base.EngineRPM, base.PedalPct, base.Gear, base.CoolantTempC = 2500, 90, 3, 90
	case FaultInject:
		base.FaultActive, base.FaultSPN, base.FaultFMI = true, 110, 3
		base.CoolantTempC = 95
	}
	return base
}
