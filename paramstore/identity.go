// Package paramstore is the central timestamped map of decoded
// parameters, keyed by a stable identity, that every other component
// reads from or writes into (spec.md §4.5).
package paramstore

// Domain groups identities for catalogue/display purposes (spec.md §3).
type Domain int

const (
	DomainEngine Domain = iota
	DomainTransmission
	DomainVehicle
	DomainFuel
	DomainElectrical
	DomainEnvironmental
	DomainDistance
	DomainDiagnostics
	DomainComputed
)

// Identity is the closed enumeration of parameters this core tracks. It
// is used as a dense array index (spec.md §4.5: ≤ 256 entries), so the
// zero value is reserved as "none" and is always a silent no-op target.
type Identity int

const (
	None Identity = iota

	EngineSpeed
	PedalPosition
	EngineLoad
	CoolantTemp
	OilPressure
	BoostPressure
	EngineHours

	CurrentGear
	TransOilTemp

	VehicleSpeed
	WheelSpeed

	FuelLevel1
	FuelRate

	BatteryVoltage

	AmbientTemp

	TotalDistance

	ActiveDTCCount

	identityCount // sentinel: total number of identities, not itself valid
)

// Catalogued describes an identity's display metadata (spec.md §3).
type Catalogued struct {
	Name   string
	Unit   string
	Domain Domain
}

// catalogue is the small static table of canonical unit/name per
// identity, grounded on the PGN/PID tables of spec.md §4.1/§4.4.
var catalogue = map[Identity]Catalogued{
	EngineSpeed:     {"Engine Speed", "rpm", DomainEngine},
	PedalPosition:   {"Accelerator Pedal", "%", DomainEngine},
	EngineLoad:      {"Engine Load", "%", DomainEngine},
	CoolantTemp:     {"Coolant Temperature", "°C", DomainEngine},
	OilPressure:     {"Oil Pressure", "kPa", DomainEngine},
	BoostPressure:   {"Boost Pressure", "kPa", DomainEngine},
	EngineHours:     {"Engine Hours", "h", DomainEngine},
	CurrentGear:     {"Current Gear", "gear", DomainTransmission},
	TransOilTemp:    {"Transmission Oil Temperature", "°C", DomainTransmission},
	VehicleSpeed:    {"Vehicle Speed", "km/h", DomainVehicle},
	WheelSpeed:      {"Wheel Speed", "km/h", DomainVehicle},
	FuelLevel1:      {"Fuel Level", "%", DomainFuel},
	FuelRate:        {"Fuel Rate", "L/h", DomainFuel},
	BatteryVoltage:  {"Battery Voltage", "V", DomainElectrical},
	AmbientTemp:     {"Ambient Temperature", "°C", DomainEnvironmental},
	TotalDistance:   {"Total Distance", "km", DomainDistance},
	ActiveDTCCount:  {"Active DTC Count", "count", DomainDiagnostics},
}

// Lookup returns the catalogue entry for id, if any.
func Lookup(id Identity) (Catalogued, bool) {
	c, ok := catalogue[id]
	return c, ok
}

// valid reports whether id indexes a real record slot.
func (id Identity) valid() bool {
	return id > None && id < identityCount
}
