package persistence

import "fmt"

// tripByID returns the addressable trip for id (0 or 1) plus its
// namespace name, or an error for any other id.
func (s *Store) tripByID(id int) (*Trip, string, error) {
	switch id {
	case 0:
		return &s.tripA, NamespaceTripA, nil
	case 1:
		return &s.tripB, NamespaceTripB, nil
	default:
		return nil, "", fmt.Errorf("persistence: trip id %d out of range", id)
	}
}

// ResetTrip zeroes tripID (0 or 1) and marks it active (spec.md §4.7).
func (s *Store) ResetTrip(tripID int, nowEpochMs int64) error {
	t, ns, err := s.tripByID(tripID)
	if err != nil {
		return err
	}
	t.Reset(nowEpochMs)
	s.markDirty(ns)
	return nil
}

// UpdateTrip increments tripID's distance/fuel/duration fields and
// recomputes its derived averages (spec.md §4.7).
func (s *Store) UpdateTrip(tripID int, deltaKm, deltaFuelL, deltaDurationS float64) error {
	t, ns, err := s.tripByID(tripID)
	if err != nil {
		return err
	}
	t.Update(deltaKm, deltaFuelL, deltaDurationS)
	s.markDirty(ns)
	return nil
}

// Trip returns a copy of tripID's current state.
func (s *Store) Trip(tripID int) (Trip, error) {
	t, _, err := s.tripByID(tripID)
	if err != nil {
		return Trip{}, err
	}
	return *t, nil
}

// Lifetime returns a copy of the lifetime accumulator.
func (s *Store) Lifetime() Trip {
	return s.lifetime
}
