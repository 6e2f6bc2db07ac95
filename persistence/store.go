// Package persistence is the wear-aware persistent-storage layer: a
// bbolt-backed set of namespaces with dirty-flag write batching and a
// clean/dirty-shutdown protocol (spec.md §4.7).
package persistence

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Namespace names, one bbolt bucket each (spec.md §4.7).
const (
	NamespaceTripA       = "trip_a"
	NamespaceTripB       = "trip_b"
	NamespaceLifetime    = "lifetime"
	NamespaceDTCHistory  = "dtc_history"
	NamespaceSettings    = "settings"
	NamespaceSystemState = "system_state"
	NamespaceFuelEconomy = "fuel_economy"
)

var allNamespaces = []string{
	NamespaceTripA, NamespaceTripB, NamespaceLifetime,
	NamespaceDTCHistory, NamespaceSettings, NamespaceSystemState,
	NamespaceFuelEconomy,
}

const maxKeyLen = 15

// flush trigger thresholds (spec.md §4.7).
const (
	periodicFlushInterval = 5 * time.Minute
	volumeFlushKm         = 1.0
)

// Store is the persistence layer: an open bbolt database, per-namespace
// dirty flags, and the distance/fuel accumulators that drive the volume
// flush trigger.
type Store struct {
	db *bolt.DB

	mu            sync.Mutex
	dirty         map[string]bool
	lastSaveMs    int64
	accDistanceKm float64
	accFuelL      float64

	tripA, tripB Trip
	lifetime     Trip
	state        SystemState
	history      []DTCEntry
	settings     Settings
}

// Open opens (or creates) the bbolt database at path and ensures every
// namespace bucket exists, mirroring the teacher's OpenDB idiom
// generalized from one bucket to the full namespace set.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, ns := range allNamespaces {
			if _, err := tx.CreateBucketIfNotExists([]byte(ns)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: init buckets: %w", err)
	}

	s := &Store{db: db, dirty: make(map[string]bool)}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// putScalar writes a single key under namespace ns within one scoped
// transaction, marking ns dirty is the caller's responsibility - this
// helper is the low-level building block for everything else.
func (s *Store) putScalar(ns, key string, value float64) error {
	if len(key) > maxKeyLen {
		return fmt.Errorf("persistence: key %q exceeds %d characters", key, maxKeyLen)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		buf, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), buf)
	})
}

// getScalar reads a single float64 key under namespace ns. ok is false
// if the key is absent, in which case the caller should fall back to a
// default (spec.md §4.7).
func (s *Store) getScalar(ns, key string) (value float64, ok bool) {
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil
		}
		ok = true
		return nil
	})
	return value, ok
}

func (s *Store) putBlob(ns, key string, v interface{}) error {
	if len(key) > maxKeyLen {
		return fmt.Errorf("persistence: key %q exceeds %d characters", key, maxKeyLen)
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ns)).Put([]byte(key), buf)
	})
}

func (s *Store) getBlob(ns, key string, v interface{}) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(ns)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return found
}

func (s *Store) markDirty(ns string) {
	s.mu.Lock()
	s.dirty[ns] = true
	s.mu.Unlock()
}

// Tick feeds the accumulator protocol (spec.md §4.7): now is the
// current epoch ms, deltaKm/deltaFuelL are the distance and fuel
// consumed since the previous tick. It folds accumulators into the
// trips and lifetime counters and flushes whenever a periodic or volume
// trigger fires.
func (s *Store) Tick(nowMs int64, deltaKm, deltaFuelL float64) error {
	s.mu.Lock()
	s.accDistanceKm += deltaKm
	s.accFuelL += deltaFuelL
	if s.lastSaveMs == 0 {
		// no timed save yet: the periodic clock starts at the first tick.
		s.lastSaveMs = nowMs
	}
	elapsed := nowMs - s.lastSaveMs
	trigger := s.accDistanceKm >= volumeFlushKm || time.Duration(elapsed)*time.Millisecond >= periodicFlushInterval
	s.mu.Unlock()

	if !trigger {
		return nil
	}
	return s.fold(nowMs)
}

// fold applies the pending accumulators to trip A, trip B, and lifetime
// distance/fuel, marks those namespaces dirty, flushes, and resets the
// accumulators.
func (s *Store) fold(nowMs int64) error {
	s.mu.Lock()
	dKm, dFuel := s.accDistanceKm, s.accFuelL
	s.accDistanceKm, s.accFuelL = 0, 0
	s.mu.Unlock()

	if dKm != 0 || dFuel != 0 {
		s.tripA.applyAccumulated(dKm, dFuel)
		s.tripB.applyAccumulated(dKm, dFuel)
		s.lifetime.applyAccumulated(dKm, dFuel)

		s.markDirty(NamespaceTripA)
		s.markDirty(NamespaceTripB)
		s.markDirty(NamespaceLifetime)
	}

	return s.Flush(nowMs)
}

// Flush writes every dirty namespace to disk and clears the dirty
// flags, recording last_save_time_ms. It is safe to call with nothing
// dirty (a no-op).
func (s *Store) Flush(nowMs int64) error {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = make(map[string]bool)
	s.mu.Unlock()

	var firstErr error
	for ns, isDirty := range dirty {
		if !isDirty {
			continue
		}
		if err := s.flushNamespace(ns); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.mu.Lock()
	s.lastSaveMs = nowMs
	s.mu.Unlock()
	return firstErr
}

func (s *Store) flushNamespace(ns string) error {
	switch ns {
	case NamespaceTripA:
		return s.putBlob(ns, "trip", s.tripA)
	case NamespaceTripB:
		return s.putBlob(ns, "trip", s.tripB)
	case NamespaceLifetime:
		return s.putBlob(ns, "trip", s.lifetime)
	case NamespaceDTCHistory:
		return s.putBlob(ns, "entries", s.history)
	case NamespaceSystemState:
		return s.putBlob(ns, "state", s.state)
	case NamespaceSettings:
		return s.putBlob(ns, "settings", s.settings)
	default:
		return nil
	}
}

// EmergencyFlush forces every namespace dirty and flushes immediately,
// without waiting for the periodic or volume trigger (spec.md §4.7): it
// folds any pending accumulated distance/fuel into the trips first, then
// writes every namespace regardless of its dirty flag.
func (s *Store) EmergencyFlush(nowMs int64) error {
	s.mu.Lock()
	dKm, dFuel := s.accDistanceKm, s.accFuelL
	s.accDistanceKm, s.accFuelL = 0, 0
	s.mu.Unlock()

	if dKm != 0 || dFuel != 0 {
		s.tripA.applyAccumulated(dKm, dFuel)
		s.tripB.applyAccumulated(dKm, dFuel)
		s.lifetime.applyAccumulated(dKm, dFuel)
	}

	s.mu.Lock()
	for _, ns := range allNamespaces {
		s.dirty[ns] = true
	}
	s.mu.Unlock()

	return s.Flush(nowMs)
}
