package persistence

// Trip is one trip/lifetime accumulator record (spec.md §4.7).
type Trip struct {
	IsActive     bool
	StartTimeMs  int64
	DistanceKm   float64
	FuelL        float64
	DurationS    float64
	AvgSpeedKmh  float64
	AvgEconomyL  float64 // L/100km
}

// applyAccumulated folds a distance/fuel delta into the trip's running
// totals. It does not recompute the derived averages: those depend on
// duration, which the caller supplies separately via Update.
func (t *Trip) applyAccumulated(deltaKm, deltaFuelL float64) {
	t.DistanceKm += deltaKm
	t.FuelL += deltaFuelL
}

// Reset zeroes the trip and marks it active, starting at now (spec.md
// §4.7: reset(trip_id, now_epoch)).
func (t *Trip) Reset(nowEpochMs int64) {
	*t = Trip{IsActive: true, StartTimeMs: nowEpochMs}
}

// Update increments distance/fuel/duration and recomputes the derived
// averages (spec.md §4.7):
//   avg_speed = distance * 3600 / duration        (duration > 0)
//   avg_economy = fuel * 100 / distance            (distance >= 1 km)
// Below 1 km economy is held at 0 to avoid division noise from a tiny
// denominator.
func (t *Trip) Update(deltaKm, deltaFuelL, deltaDurationS float64) {
	t.DistanceKm += deltaKm
	t.FuelL += deltaFuelL
	t.DurationS += deltaDurationS

	if t.DurationS > 0 {
		t.AvgSpeedKmh = t.DistanceKm * 3600 / t.DurationS
	}
	if t.DistanceKm >= 1.0 {
		t.AvgEconomyL = t.FuelL * 100 / t.DistanceKm
	} else {
		t.AvgEconomyL = 0
	}
}
