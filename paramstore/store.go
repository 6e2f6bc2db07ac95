package paramstore

import "sync"

// changeEpsilon is the minimum absolute delta between an old and new
// value that counts as a real change for observer notification purposes
// (spec.md §4.5): values that wobble by less than this are written but
// do not fire observers.
const changeEpsilon = 1e-3

// Source tags the origin of a parameter-store update, so a downstream
// consumer can tell a J1939-decoded value apart from a J1708 one or a
// computed derivation (spec.md §3).
type Source int

const (
	SourceUnknown Source = iota
	SourceJ1939
	SourceJ1708
	SourceComputed
)

// Record is one parameter slot: current/previous value, the timestamp
// of the last accepted update, an update counter, a source tag, and
// whether it currently holds a valid reading (spec.md §3).
type Record struct {
	mu          sync.Mutex
	value       float64
	prevValue   float64
	timestamp   int64
	updateCount uint64
	source      Source
	valid       bool
}

// Observer is notified after a record's value changes by more than
// changeEpsilon, receiving both the new and previous value per spec.md
// §4.5/§6's documented on-change contract. It must not block or call
// back into the Store.
type Observer func(id Identity, value, prevValue float64, timestampMs int64)

// Store is the central parameter table: identityCount record slots,
// each independently locked, plus a list of change observers guarded by
// its own mutex (spec.md §4.5, §5 - per-record-slot granularity rather
// than one global lock).
type Store struct {
	records [identityCount]Record

	obsMu     sync.Mutex
	observers []Observer
}

// NewStore returns an empty store; every identity starts invalid.
func NewStore() *Store {
	return &Store{}
}

// RegisterObserver appends a callback invoked on every accepted change.
func (s *Store) RegisterObserver(obs Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, obs)
}

// Update writes value into id's slot as reported by src at timestampMs,
// and marks it valid. Per spec.md §5's ordering guarantee, an update
// whose timestamp is older than the record's current timestamp is
// discarded - the newest-timestamped update always wins, regardless of
// arrival order across sources. It fires registered observers if the
// value moved by more than changeEpsilon, or if the slot was previously
// invalid (spec.md §4.5: the first reading always notifies). Update on
// an invalid Identity (None, or out of range) is a silent no-op.
func (s *Store) Update(id Identity, value float64, timestampMs int64, src Source) {
	if !id.valid() {
		return
	}
	rec := &s.records[id]

	rec.mu.Lock()
	if rec.valid && timestampMs < rec.timestamp {
		rec.mu.Unlock()
		return
	}

	delta := value - rec.value
	if delta < 0 {
		delta = -delta
	}
	changed := !rec.valid || delta > changeEpsilon
	oldValue := rec.value

	if changed {
		rec.prevValue = rec.value
	}
	rec.value = value
	rec.timestamp = timestampMs
	rec.source = src
	rec.valid = true
	rec.updateCount++
	rec.mu.Unlock()

	if changed {
		s.notify(id, value, oldValue, timestampMs)
	}
}

// Invalidate clears id's valid flag, marking it no longer fresh; the
// stored value, previous value, timestamp and update count are kept. It
// does not itself fire observers: a missing reading is not a new value.
func (s *Store) Invalidate(id Identity) {
	if !id.valid() {
		return
	}
	rec := &s.records[id]
	rec.mu.Lock()
	rec.valid = false
	rec.mu.Unlock()
}

// Get returns id's current value and whether it currently holds a valid
// reading.
func (s *Store) Get(id Identity) (float64, bool) {
	if !id.valid() {
		return 0, false
	}
	rec := &s.records[id]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.value, rec.valid
}

// GetWithTime is Get plus the timestamp the value was last set at.
func (s *Store) GetWithTime(id Identity) (value float64, timestampMs int64, valid bool) {
	if !id.valid() {
		return 0, 0, false
	}
	rec := &s.records[id]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.value, rec.timestamp, rec.valid
}

// Detail returns the full record state: current and previous value,
// timestamp, update count, source, and validity.
func (s *Store) Detail(id Identity) (value, prevValue float64, timestampMs int64, updateCount uint64, src Source, valid bool) {
	if !id.valid() {
		return 0, 0, 0, 0, SourceUnknown, false
	}
	rec := &s.records[id]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.value, rec.prevValue, rec.timestamp, rec.updateCount, rec.source, rec.valid
}

// Age returns nowMs minus id's last-update timestamp. The second return
// is false if id does not currently hold a valid reading (never set, or
// invalidated).
func (s *Store) Age(id Identity, nowMs int64) (int64, bool) {
	_, ts, valid := s.GetWithTime(id)
	if !valid {
		return 0, false
	}
	return nowMs - ts, true
}

// IsFresh reports whether id holds a valid reading no older than
// maxAgeMs as of nowMs.
func (s *Store) IsFresh(id Identity, nowMs int64, maxAgeMs int64) bool {
	age, ok := s.Age(id, nowMs)
	return ok && age <= maxAgeMs
}

func (s *Store) notify(id Identity, value, prevValue float64, timestampMs int64) {
	s.obsMu.Lock()
	obs := append([]Observer(nil), s.observers...)
	s.obsMu.Unlock()

	for _, o := range obs {
		o(id, value, prevValue, timestampMs)
	}
}
