// Package telemetry holds the small set of mutex-guarded counters the
// core keeps on its own non-fatal error paths (spec.md §7): malformed
// frames, transport sessions abandoned, and DTC history evictions.
// Grounded on the teacher's ProtectedData mutex+struct idiom
// (cmd/agent-j1939/data.go), narrowed from a full vehicle-state struct
// to a handful of increment-only counters.
package telemetry

import "sync"

// Values is a point-in-time copy of Counters, safe to pass by value.
type Values struct {
	MalformedFrames     uint64
	TransportAbandoned  uint64
	DTCHistoryEvictions uint64
}

// Counters tracks non-fatal error conditions for diagnostic surfacing.
type Counters struct {
	mu sync.Mutex
	v  Values
}

// NewCounters returns a zeroed Counters.
func NewCounters() *Counters {
	return &Counters{}
}

// IncMalformedFrame records a discarded malformed frame (bad length,
// bad checksum, buffer overrun, or null input).
func (c *Counters) IncMalformedFrame() {
	c.mu.Lock()
	c.v.MalformedFrames++
	c.mu.Unlock()
}

// IncTransportAbandoned records an abandoned transport-protocol
// session (sequence error or inter-packet timeout).
func (c *Counters) IncTransportAbandoned() {
	c.mu.Lock()
	c.v.TransportAbandoned++
	c.mu.Unlock()
}

// IncDTCHistoryEviction records a DTC history slot evicted to make
// room for a new fault.
func (c *Counters) IncDTCHistoryEviction() {
	c.mu.Lock()
	c.v.DTCHistoryEvictions++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current counter values.
func (c *Counters) Snapshot() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}
