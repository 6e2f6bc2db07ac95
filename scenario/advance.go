package scenario

// Advance steps the simulated state forward by deltaMs according to
// the selected scenario's dynamics, adding small deterministic jitter
// from the seeded PRNG so repeated runs differ from a flat line but
// stay reproducible for a fixed seed.
func (g *Generator) Advance(deltaMs int64) {
	g.nowMs += deltaMs
	dtS := float64(deltaMs) / 1000.0

	jitter := func(span float64) float64 { return (g.rng.Float64()*2 - 1) * span }

	switch g.name {
	case Highway:
		g.state.EngineRPM = clamp(g.state.EngineRPM+jitter(20), 1500, 2100)
		g.state.VehicleSpeedKmh = clamp(g.state.VehicleSpeedKmh+jitter(2), 80, 110)
		g.state.WheelSpeedKmh = g.state.VehicleSpeedKmh
		g.state.FuelRateLph = 25 + jitter(2)
	case City:
		g.state.EngineRPM = clamp(g.state.EngineRPM+jitter(150), 700, 2200)
		g.state.VehicleSpeedKmh = clamp(g.state.VehicleSpeedKmh+jitter(10), 0, 60)
		g.state.WheelSpeedKmh = g.state.VehicleSpeedKmh
		g.state.FuelRateLph = 12 + jitter(3)
	case ColdStart:
		if g.state.CoolantTempC < 90 {
			g.state.CoolantTempC += dtS * 0.3
		}
		g.state.EngineRPM = clamp(g.state.EngineRPM+jitter(50), 700, 1200)
	case Acceleration:
		g.state.EngineRPM = clamp(g.state.EngineRPM+200*dtS, 700, 3000)
		g.state.VehicleSpeedKmh = clamp(g.state.VehicleSpeedKmh+10*dtS, 0, 140)
		g.state.WheelSpeedKmh = g.state.VehicleSpeedKmh
		g.state.PedalPct = 90
		g.state.FuelRateLph = 35 + jitter(3)
	case FaultInject:
		g.state.EngineRPM = clamp(g.state.EngineRPM+jitter(50), 700, 1500)
		g.state.CoolantTempC = clamp(g.state.CoolantTempC+jitter(1), 95, 115)
	default: // Idle
		g.state.EngineRPM = clamp(g.state.EngineRPM+jitter(10), 650, 800)
		g.state.FuelRateLph = 2 + jitter(0.5)
	}

	g.state.OilPressureKPa = clamp(200+g.state.EngineRPM/10+jitter(5), 150, 650)
	g.state.BatteryV = clamp(13.8+jitter(0.1), 11.5, 14.4)
	g.state.FuelLevelPct = clamp(g.state.FuelLevelPct-dtS*0.0005, 0, 100)
	g.state.TransOilTempC += (g.state.CoolantTempC - g.state.TransOilTempC) * 0.01
	g.state.EngineHours += dtS / 3600
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Due reports which signal groups are ready to emit as of the
// generator's current simulated time, marking them emitted. DM1's
// cadence depends on whether a fault is currently active (spec.md §6).
func (g *Generator) Due() []string {
	var due []string
	for group, period := range g.periods {
		last, seen := g.lastEmitted[group]
		if !seen || g.nowMs-last >= period {
			due = append(due, group)
			g.lastEmitted[group] = g.nowMs
		}
	}

	dm1Period := int64(dm1PeriodInactiveMs)
	if g.state.FaultActive {
		dm1Period = dm1PeriodActiveMs
	}
	last, seen := g.lastEmitted["DM1"]
	if !seen || g.nowMs-last >= dm1Period {
		due = append(due, "DM1")
		g.lastEmitted["DM1"] = g.nowMs
	}

	return due
}

// NowMs returns the generator's current simulated time.
func (g *Generator) NowMs() int64 {
	return g.nowMs
}
