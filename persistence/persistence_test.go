package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBootFirstTimeDefaults(t *testing.T) {
	s := newTestStore(t)
	if err := s.Boot(); err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	state := s.State()
	if state.BootCount != 1 {
		t.Errorf("BootCount = %d, want 1", state.BootCount)
	}
	if state.CrashCount != 1 {
		t.Errorf("CrashCount = %d, want 1 (no prior clean shutdown)", state.CrashCount)
	}

	settings := s.Settings()
	if settings.Brightness != 75 || settings.WorstEconomyL != 999 {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestCleanShutdownThenBootDoesNotCountCrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}
	if err := s.Shutdown(1000); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if err := s2.Boot(); err != nil {
		t.Fatal(err)
	}
	state := s2.State()
	if state.BootCount != 2 {
		t.Errorf("BootCount = %d, want 2", state.BootCount)
	}
	if state.CrashCount != 1 {
		t.Errorf("CrashCount = %d, want 1 (unchanged from the first boot) after a clean shutdown", state.CrashCount)
	}
}

func TestCrashDetectedOnNextBoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}
	// no Shutdown() call - simulates power loss.
	s.db.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if err := s2.Boot(); err != nil {
		t.Fatal(err)
	}
	if s2.State().CrashCount != 2 {
		t.Errorf("CrashCount = %d, want 2", s2.State().CrashCount)
	}
}

func TestTripResetAndUpdate(t *testing.T) {
	s := newTestStore(t)
	if err := s.ResetTrip(0, 1000); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTrip(0, 10, 1, 3600); err != nil {
		t.Fatal(err)
	}
	trip, err := s.Trip(0)
	if err != nil {
		t.Fatal(err)
	}
	if trip.AvgSpeedKmh != 10 {
		t.Errorf("AvgSpeedKmh = %v, want 10", trip.AvgSpeedKmh)
	}
	if trip.AvgEconomyL != 10 {
		t.Errorf("AvgEconomyL = %v, want 10", trip.AvgEconomyL)
	}
}

func TestTripEconomyZeroBelowOneKm(t *testing.T) {
	s := newTestStore(t)
	s.ResetTrip(1, 0)
	s.UpdateTrip(1, 0.5, 0.1, 60)
	trip, _ := s.Trip(1)
	if trip.AvgEconomyL != 0 {
		t.Errorf("AvgEconomyL = %v, want 0 below 1 km", trip.AvgEconomyL)
	}
}

func TestUpdateTripRejectsBadID(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateTrip(2, 1, 1, 1); err == nil {
		t.Error("trip id 2 should be rejected")
	}
}

func TestDTCHistoryStoreDedupesByTriple(t *testing.T) {
	s := newTestStore(t)
	s.StoreDTC(100, 3, 0, 1000, true)
	s.StoreDTC(100, 3, 0, 2000, true)
	hist := s.DTCHistory()
	if len(hist) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(hist))
	}
	if hist[0].OccurrenceCount != 2 || hist[0].LastSeenMs != 2000 {
		t.Errorf("entry = %+v", hist[0])
	}
}

func TestDTCHistoryEvictsOldestWhenFull(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < maxDTCHistory; i++ {
		s.StoreDTC(uint32(i), 0, 0, int64(i), true)
	}
	// oldest is spn=0 at ts=0; storing a new one should evict it.
	s.StoreDTC(9999, 0, 0, int64(maxDTCHistory), true)
	hist := s.DTCHistory()
	if len(hist) != maxDTCHistory {
		t.Fatalf("len(history) = %d, want %d", len(hist), maxDTCHistory)
	}
	for _, e := range hist {
		if e.SPN == 0 {
			t.Fatal("oldest entry (spn=0) should have been evicted")
		}
	}
}

func TestClearActiveAndClearAll(t *testing.T) {
	s := newTestStore(t)
	s.StoreDTC(1, 1, 0, 1000, true)
	s.ClearActiveDTCs()
	if s.DTCHistory()[0].Active {
		t.Error("entry should be inactive after ClearActiveDTCs")
	}
	s.ClearAllDTCs()
	if len(s.DTCHistory()) != 0 {
		t.Error("history should be empty after ClearAllDTCs")
	}
}

func TestEmergencyFlushFoldsAccumulatorsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Tick(1000, 0.2, 0.02); err != nil {
		t.Fatal(err) // below volume trigger, should not flush yet
	}
	if err := s.EmergencyFlush(2000); err != nil {
		t.Fatal(err)
	}
	if s.Lifetime().DistanceKm != 0.2 {
		t.Errorf("lifetime distance = %v, want 0.2", s.Lifetime().DistanceKm)
	}
	s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file should exist: %v", err)
	}
}

func TestTickVolumeTrigger(t *testing.T) {
	s := newTestStore(t)
	if err := s.Tick(1000, 1.5, 0.1); err != nil {
		t.Fatal(err)
	}
	if s.Lifetime().DistanceKm != 1.5 {
		t.Errorf("lifetime distance = %v, want 1.5 after volume-triggered flush", s.Lifetime().DistanceKm)
	}
}
