// Package bookings holds the read-only appointment store the availability engine queries.
package bookings

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"

	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
)

// DayBooking groups the booked intervals of one local calendar date. Appointments may be
// unsorted and may overlap.
type DayBooking struct {
	Date         civil.Date
	Appointments []availability.Interval
}

// Snapshot is an immutable appointment store. Its methods are safe on a nil receiver, which
// behaves as an empty store.
type Snapshot struct {
	ID       string
	LoadedAt time.Time

	dates        []civil.Date
	byDate       map[civil.Date][]availability.Interval
	appointments int
}

// NewSnapshot validates every interval and indexes days by date. Repeated dates are merged.
func NewSnapshot(days []DayBooking) (*Snapshot, error) {
	s := &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		byDate:   make(map[civil.Date][]availability.Interval, len(days)),
	}
	for _, day := range days {
		if !day.Date.IsValid() {
			return nil, fmt.Errorf("invalid date %s", day.Date)
		}
		for _, appt := range day.Appointments {
			if err := appt.Validate(); err != nil {
				return nil, fmt.Errorf("bookings for %s: %w", day.Date, err)
			}
		}
		existing, seen := s.byDate[day.Date]
		if !seen {
			s.dates = append(s.dates, day.Date)
		}
		merged := make([]availability.Interval, 0, len(existing)+len(day.Appointments))
		merged = append(merged, existing...)
		s.byDate[day.Date] = append(merged, day.Appointments...)
		s.appointments += len(day.Appointments)
	}
	sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })
	return s, nil
}

// Build files each interval under every local date it touches within a window of days starting
// at from. Every date of the window is known to the snapshot even without bookings; intervals
// entirely outside the window are ignored.
func Build(loc *time.Location, from civil.Date, days int, intervals []availability.Interval) (*Snapshot, error) {
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		return nil, fmt.Errorf("snapshot window must be at least one day (got %d)", days)
	}
	window := make([]DayBooking, days)
	for i := range window {
		window[i].Date = from.AddDays(i)
	}
	last := from.AddDays(days - 1)
	filed := 0
	for _, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		first := civil.DateOf(iv.Start.In(loc))
		end := civil.DateOf(iv.End.Add(-time.Nanosecond).In(loc))
		if first.Before(from) {
			first = from
		}
		if end.After(last) {
			end = last
		}
		if end.Before(first) {
			continue
		}
		filed++
		for d := first; !d.After(end); d = d.AddDays(1) {
			i := d.DaysSince(from)
			window[i].Appointments = append(window[i].Appointments, iv)
		}
	}
	snap, err := NewSnapshot(window)
	if err != nil {
		return nil, err
	}
	snap.appointments = filed
	return snap, nil
}

func (s *Snapshot) BookingsFor(date civil.Date) []availability.Interval {
	if s == nil {
		return nil
	}
	return s.byDate[date]
}

func (s *Snapshot) Dates() []civil.Date {
	if s == nil {
		return nil
	}
	return s.dates
}

// Days is the number of known dates.
func (s *Snapshot) Days() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Appointments counts distinct bookings; one spanning midnight is filed under both dates but
// counted once.
func (s *Snapshot) Appointments() int {
	if s == nil {
		return 0
	}
	return s.appointments
}
