// Package availability computes free time for a single calendar from a fixed daily working
// window, a fixed slot size and the bookings held by a Store.
package availability

import (
	"time"

	"github.com/golang-sql/civil"
)

// Store is the read-only source of booked intervals, keyed by local calendar date.
type Store interface {
	// BookingsFor returns the bookings of date in no particular order, or nothing when the
	// date is unknown. Callers must not modify the returned slice.
	BookingsFor(date civil.Date) []Interval
	// Dates lists every known date in strictly increasing order.
	Dates() []civil.Date
}

type emptyStore struct{}

func (emptyStore) BookingsFor(civil.Date) []Interval { return nil }
func (emptyStore) Dates() []civil.Date               { return nil }

// Engine answers availability queries. It holds no mutable state and is safe for concurrent use
// as long as its Store is not mutated.
type Engine struct {
	cfg   Config
	store Store
}

// New validates cfg and binds store; a nil store behaves as an empty one.
func New(cfg Config, store Store) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Location = cfg.location()
	if store == nil {
		store = emptyStore{}
	}
	return &Engine{cfg: cfg, store: store}, nil
}

// WithStore returns a copy of e bound to store, so one query sees one consistent snapshot.
func (e *Engine) WithStore(store Store) *Engine {
	cp := *e
	if store == nil {
		store = emptyStore{}
	}
	cp.store = store
	return &cp
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) SlotDuration() time.Duration {
	return time.Duration(e.cfg.SlotDurationMinutes) * time.Minute
}

// DateOf returns the local calendar date of t.
func (e *Engine) DateOf(t time.Time) civil.Date {
	return civil.DateOf(t.In(e.cfg.Location))
}

// at resolves a wall-clock minute of date. Minute 1440 is the following midnight.
func (e *Engine) at(date civil.Date, minute int) time.Time {
	return time.Date(date.Year, date.Month, date.Day, 0, minute, 0, 0, e.cfg.Location)
}

// window returns the working window of date.
func (e *Engine) window(date civil.Date) Interval {
	return Interval{Start: e.at(date, e.cfg.WorkStartMinute), End: e.at(date, e.cfg.WorkEndMinute)}
}

// daySlots tiles the working window of date with slot-sized candidates. A trailing candidate
// that would run past the end of the window is dropped.
//
// Each candidate starts at a wall-clock minute and lasts one slot duration of elapsed time.
// Minutes inside a skipped DST hour resolve to instants already covered, so a candidate
// starting before the previous one ends is dropped and the tiling stays strictly increasing.
func (e *Engine) daySlots(date civil.Date) []Interval {
	step := e.cfg.SlotDurationMinutes
	duration := e.SlotDuration()
	windowEnd := e.at(date, e.cfg.WorkEndMinute)
	slots := make([]Interval, 0, (e.cfg.WorkEndMinute-e.cfg.WorkStartMinute)/step)
	for m := e.cfg.WorkStartMinute; m < e.cfg.WorkEndMinute; m += step {
		if m+step > e.cfg.WorkEndMinute {
			break
		}
		start := e.at(date, m)
		if n := len(slots); n > 0 && start.Before(slots[n-1].End) {
			continue
		}
		end := start.Add(duration)
		if end.After(windowEnd) {
			break
		}
		slots = append(slots, Interval{Start: start, End: end})
	}
	return slots
}
