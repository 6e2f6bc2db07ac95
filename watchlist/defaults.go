package watchlist

import (
	"math"

	"github.com/dkuznetsov/j1939dash/paramstore"
)

// defaultEntry is one row of the canonical dashboard layout (spec.md
// §4.6's reference table).
type defaultEntry struct {
	page, position               int
	identity                     paramstore.Identity
	widget                       Widget
	warnLow, warnHigh            float64
	critLow, critHigh            float64
	gaugeMin, gaugeMax           float64
}

var inf = math.Inf(1)
var negInf = math.Inf(-1)

var canonicalLayout = []defaultEntry{
	{0, 0, paramstore.EngineSpeed, WidgetCircular, 400, 2200, 300, 2500, 0, 3000},
	{0, 1, paramstore.CoolantTemp, WidgetLinear, 70, 100, 50, 110, 40, 120},
	{0, 2, paramstore.OilPressure, WidgetLinear, 150, inf, 100, inf, 0, 700},
	{0, 3, paramstore.BoostPressure, WidgetSemicircle, negInf, inf, negInf, inf, 0, 300},
	{1, 0, paramstore.VehicleSpeed, WidgetCircular, negInf, inf, negInf, inf, 0, 140},
	{1, 1, paramstore.FuelLevel1, WidgetLinear, 15, inf, 10, inf, 0, 100},
	{2, 0, paramstore.TransOilTemp, WidgetLinear, negInf, 100, negInf, 120, 0, 150},
	{3, 0, paramstore.BatteryVoltage, WidgetNumeric, 12.0, 15.0, 11.5, 15.5, 0, 0},
	{3, 1, paramstore.ActiveDTCCount, WidgetIndicator, negInf, 0.5, negInf, 0.5, 0, 0},
}

// SetupDefaults installs the canonical dashboard layout: four pages
// (engine, fuel, transmission, diagnostics) with the named entries and
// thresholds from spec.md §4.6. Any entry that fails to add (e.g.
// called on a non-empty list) is skipped rather than aborting the rest.
func (l *List) SetupDefaults() {
	for _, e := range canonicalLayout {
		if _, err := l.Add(e.identity, e.widget, e.page, e.position); err != nil {
			continue
		}
		l.SetThresholds(e.identity, e.warnLow, e.warnHigh, e.critLow, e.critHigh)
		if e.gaugeMax != 0 || e.gaugeMin != 0 {
			l.SetGaugeRange(e.identity, e.gaugeMin, e.gaugeMax)
		}
	}
}
