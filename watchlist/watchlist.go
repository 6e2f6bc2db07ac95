// Package watchlist projects the parameter store onto a dashboard
// layout of gauges and indicators, computing an alert severity per item
// (spec.md §4.6).
package watchlist

import (
	"fmt"
	"math"

	"github.com/dkuznetsov/j1939dash/paramstore"
)

// Widget is the display-kind tag carried on a watch item. The watch
// list itself never renders anything; this tag is metadata for whatever
// UI adapter consumes PageItems.
type Widget int

const (
	WidgetCircular Widget = iota
	WidgetLinear
	WidgetSemicircle
	WidgetNumeric
	WidgetIndicator
)

// Severity is the alert level derived from a value against its
// thresholds (spec.md §3).
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "NONE"
	}
}

const maxPages = 4
const maxEntries = 64

// Item is one dashboard slot: an identity projected with thresholds, a
// gauge range, and the last severity computed for it (spec.md §4.6).
type Item struct {
	Identity paramstore.Identity
	Widget   Widget
	Page     int
	Position int

	Decimals int
	Label    string
	Unit     string

	GaugeMin, GaugeMax float64

	WarnLow, WarnHigh float64
	CritLow, CritHigh float64

	Enabled  bool
	Severity Severity
}

// severityOf implements spec.md §3's severity function: CRITICAL if v is
// at or beyond a crit threshold, else WARNING if at or beyond a warn
// threshold, else NONE. Disabled thresholds are saturated to ±∞ and so
// never trigger.
func severityOf(v, warnLow, warnHigh, critLow, critHigh float64) Severity {
	if v <= critLow || v >= critHigh {
		return SeverityCritical
	}
	if v <= warnLow || v >= warnHigh {
		return SeverityWarning
	}
	return SeverityNone
}

// List is the watch list: a fixed-capacity set of items keyed by
// identity, each addressable by page/position for dashboard rendering.
type List struct {
	items map[paramstore.Identity]*Item
}

// NewList returns an empty watch list.
func NewList() *List {
	return &List{items: make(map[paramstore.Identity]*Item)}
}

// Add installs a new entry at (page, position) with the defaults from
// spec.md §4.6: enabled, one decimal place, thresholds saturated to
// ±infinity (disabled), gauge range 0..100. It fails if the identity is
// already present, the list is full, or the page index is out of range.
func (l *List) Add(id paramstore.Identity, widget Widget, page, position int) (int, error) {
	if page < 0 || page >= maxPages {
		return 0, fmt.Errorf("watchlist: page %d out of range", page)
	}
	if _, exists := l.items[id]; exists {
		return 0, fmt.Errorf("watchlist: identity %v already present", id)
	}
	if len(l.items) >= maxEntries {
		return 0, fmt.Errorf("watchlist: list is full")
	}

	name, unit := "", ""
	if cat, ok := paramstore.Lookup(id); ok {
		name, unit = cat.Name, cat.Unit
	}

	l.items[id] = &Item{
		Identity: id,
		Widget:   widget,
		Page:     page,
		Position: position,
		Decimals: 1,
		Label:    name,
		Unit:     unit,
		GaugeMin: 0,
		GaugeMax: 100,
		WarnLow:  math.Inf(-1),
		WarnHigh: math.Inf(1),
		CritLow:  math.Inf(-1),
		CritHigh: math.Inf(1),
		Enabled:  true,
	}
	return len(l.items) - 1, nil
}

// Remove deletes the entry for id, failing if absent.
func (l *List) Remove(id paramstore.Identity) error {
	if _, ok := l.items[id]; !ok {
		return fmt.Errorf("watchlist: identity %v not present", id)
	}
	delete(l.items, id)
	return nil
}

// SetThresholds updates an entry's four severity thresholds.
func (l *List) SetThresholds(id paramstore.Identity, warnLow, warnHigh, critLow, critHigh float64) error {
	item, ok := l.items[id]
	if !ok {
		return fmt.Errorf("watchlist: identity %v not present", id)
	}
	item.WarnLow, item.WarnHigh = warnLow, warnHigh
	item.CritLow, item.CritHigh = critLow, critHigh
	return nil
}

// SetGaugeRange updates an entry's display gauge min/max.
func (l *List) SetGaugeRange(id paramstore.Identity, min, max float64) error {
	item, ok := l.items[id]
	if !ok {
		return fmt.Errorf("watchlist: identity %v not present", id)
	}
	item.GaugeMin, item.GaugeMax = min, max
	return nil
}

// SetCustomLabel overrides an entry's display label and unit.
func (l *List) SetCustomLabel(id paramstore.Identity, label, unit string) error {
	item, ok := l.items[id]
	if !ok {
		return fmt.Errorf("watchlist: identity %v not present", id)
	}
	item.Label, item.Unit = label, unit
	return nil
}

// Update recomputes severity for every enabled entry that currently
// holds a valid value in store, per spec.md §4.6. now is accepted for
// symmetry with the rest of the cooperative tick model but the severity
// function itself is time-independent.
func (l *List) Update(store *paramstore.Store, now int64) {
	for _, item := range l.items {
		if !item.Enabled {
			continue
		}
		v, ok := store.Get(item.Identity)
		if !ok {
			continue
		}
		item.Severity = severityOf(v, item.WarnLow, item.WarnHigh, item.CritLow, item.CritHigh)
	}
}

// PageItems returns the enabled entries on the given page.
func (l *List) PageItems(page int) []Item {
	var out []Item
	for _, item := range l.items {
		if item.Enabled && item.Page == page {
			out = append(out, *item)
		}
	}
	return out
}

// HighestAlert returns the highest severity across all enabled entries.
func (l *List) HighestAlert() Severity {
	highest := SeverityNone
	for _, item := range l.items {
		if item.Enabled && item.Severity > highest {
			highest = item.Severity
		}
	}
	return highest
}

// AlertCount returns the number of enabled entries at or above level.
func (l *List) AlertCount(level Severity) int {
	n := 0
	for _, item := range l.items {
		if item.Enabled && item.Severity >= level {
			n++
		}
	}
	return n
}
