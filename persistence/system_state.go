package persistence

// SystemState tracks boot/shutdown bookkeeping, persisted in the
// system_state namespace (spec.md §4.7).
type SystemState struct {
	BootCount     int
	CrashCount    int
	CleanShutdown bool
}

// Boot loads persisted namespaces, increments boot_count, and detects a
// missed shutdown: if the persisted clean_shutdown flag is false, it
// bumps crash_count. It then immediately writes clean_shutdown=false so
// the next boot can detect this one if it also crashes (spec.md §4.7).
func (s *Store) Boot() error {
	s.loadAll()

	s.state.BootCount++
	if !s.state.CleanShutdown {
		s.state.CrashCount++
	}
	s.state.CleanShutdown = false
	s.markDirty(NamespaceSystemState)

	return s.Flush(0)
}

// loadAll reads every namespace's persisted blob into memory, applying
// defaults (spec.md §4.7) where a key is absent.
func (s *Store) loadAll() {
	if !s.getBlob(NamespaceTripA, "trip", &s.tripA) {
		s.tripA = Trip{}
	}
	if !s.getBlob(NamespaceTripB, "trip", &s.tripB) {
		s.tripB = Trip{}
	}
	if !s.getBlob(NamespaceLifetime, "trip", &s.lifetime) {
		s.lifetime = Trip{}
	}
	if !s.getBlob(NamespaceDTCHistory, "entries", &s.history) {
		s.history = nil
	}
	if !s.getBlob(NamespaceSystemState, "state", &s.state) {
		s.state = SystemState{}
	}

	var settings Settings
	if s.getBlob(NamespaceSettings, "settings", &settings) {
		s.settings = settings
	} else {
		s.settings = DefaultSettings()
	}
}

// Shutdown runs the orderly shutdown protocol (spec.md §4.7, §5): an
// emergency flush, then clean_shutdown=true written directly to flash.
func (s *Store) Shutdown(nowMs int64) error {
	if err := s.EmergencyFlush(nowMs); err != nil {
		return err
	}
	s.state.CleanShutdown = true
	return s.putBlob(NamespaceSystemState, "state", s.state)
}

// State returns a copy of the current system state.
func (s *Store) State() SystemState {
	return s.state
}
