package persistence

// Settings holds user-configurable preferences and the values used to
// compute fuel economy, persisted in the settings namespace (spec.md
// §4.7).
type Settings struct {
	Metric             bool
	Brightness         int
	FuelTankCapacityL1 float64
	FuelTankCapacityL2 float64
	BestEconomyL       float64
	WorstEconomyL      float64
}

// DefaultSettings returns the values used on first boot or when a key
// is absent (spec.md §4.7): metric units, brightness 75, 200 L tank
// capacities, best_mpg=0 and worst_mpg=999 so the first sample becomes
// both extremes.
func DefaultSettings() Settings {
	return Settings{
		Metric:             true,
		Brightness:         75,
		FuelTankCapacityL1: 200,
		FuelTankCapacityL2: 200,
		BestEconomyL:       0,
		WorstEconomyL:      999,
	}
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	return s.settings
}

// SetSettings replaces the current settings and marks the namespace
// dirty.
func (s *Store) SetSettings(v Settings) {
	s.settings = v
	s.markDirty(NamespaceSettings)
}

// RecordEconomySample updates best/worst economy extremes if sample
// (L/100km, lower is better) sets a new record.
func (s *Store) RecordEconomySample(economyL float64) {
	changed := false
	if s.settings.BestEconomyL == 0 || economyL < s.settings.BestEconomyL {
		s.settings.BestEconomyL = economyL
		changed = true
	}
	if economyL > s.settings.WorstEconomyL || s.settings.WorstEconomyL == 999 {
		if economyL > 0 {
			s.settings.WorstEconomyL = economyL
			changed = true
		}
	}
	if changed {
		s.markDirty(NamespaceSettings)
	}
}
