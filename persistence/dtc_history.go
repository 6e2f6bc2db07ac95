package persistence

const maxDTCHistory = 20

// DTCEntry is one stored fault record (spec.md §4.7).
type DTCEntry struct {
	SPN             uint32
	FMI             uint8
	SourceAddr      byte
	FirstSeenMs     int64
	LastSeenMs      int64
	OccurrenceCount int
	Active          bool
}

// StoreDTC records spn/fmi/sa as seen at ts (spec.md §4.7): a matching
// (spn, fmi, sa) triple has its last_seen bumped and occurrence_count
// incremented; otherwise a new entry is appended if space remains, or
// the entry with the smallest last_seen is evicted to make room. evicted
// is true only in that last case, so callers can feed it to a telemetry
// counter (spec.md §7).
func (s *Store) StoreDTC(spn uint32, fmi uint8, sa byte, tsMs int64, active bool) (evicted bool) {
	for i := range s.history {
		e := &s.history[i]
		if e.SPN == spn && e.FMI == fmi && e.SourceAddr == sa {
			e.LastSeenMs = tsMs
			e.OccurrenceCount++
			e.Active = active
			s.markDirty(NamespaceDTCHistory)
			return false
		}
	}

	entry := DTCEntry{
		SPN: spn, FMI: fmi, SourceAddr: sa,
		FirstSeenMs: tsMs, LastSeenMs: tsMs,
		OccurrenceCount: 1, Active: active,
	}

	if len(s.history) < maxDTCHistory {
		s.history = append(s.history, entry)
		s.markDirty(NamespaceDTCHistory)
		return false
	}

	oldest := 0
	for i := 1; i < len(s.history); i++ {
		if s.history[i].LastSeenMs < s.history[oldest].LastSeenMs {
			oldest = i
		}
	}
	s.history[oldest] = entry
	s.markDirty(NamespaceDTCHistory)
	return true
}

// ClearActiveDTCs marks every stored entry inactive without removing
// them from history.
func (s *Store) ClearActiveDTCs() {
	for i := range s.history {
		s.history[i].Active = false
	}
	s.markDirty(NamespaceDTCHistory)
}

// ClearAllDTCs empties the DTC history table.
func (s *Store) ClearAllDTCs() {
	s.history = nil
	s.markDirty(NamespaceDTCHistory)
}

// DTCHistory returns a copy of the currently stored entries.
func (s *Store) DTCHistory() []DTCEntry {
	out := make([]DTCEntry, len(s.history))
	copy(out, s.history)
	return out
}
