package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/golang-sql/civil"
)

// NextAvailability returns the earliest free slot starting at or after from.
//
// The search starts on the local date of from, or on the following date when from is at or
// past the end of that day's working window, and never earlier than the first date known to the
// store. It walks calendar days up to the last date known to the store, bounded by
// Config.LookaheadDays counted from the first scanned day; dates missing from the store count as
// days without bookings. ErrNoAvailabilityFound is returned when the store is empty, already ends
// before the starting day, or no free slot exists within the bound.
//
// Conflicts use the endpoint test of Interval.blockedBy, which is deliberately looser than the
// overlap test of ListAvailabilities.
func (e *Engine) NextAvailability(from time.Time) (Interval, error) {
	dates := e.store.Dates()
	if len(dates) == 0 {
		return Interval{}, fmt.Errorf("%w: store has no dates", ErrNoAvailabilityFound)
	}

	// Nothing is known about days before the store begins.
	startDay := e.startDay(from)
	if startDay.Before(dates[0]) {
		startDay = dates[0]
	}
	idx := searchDates(dates, startDay)
	if idx == len(dates) {
		return Interval{}, fmt.Errorf("%w: store ends on %s, before %s", ErrNoAvailabilityFound, dates[len(dates)-1], startDay)
	}

	lastDay := dates[len(dates)-1]
	if horizon := startDay.AddDays(e.cfg.LookaheadDays - 1); horizon.Before(lastDay) {
		lastDay = horizon
	}

	for day := startDay; !day.After(lastDay); day = day.AddDays(1) {
		var booked []Interval
		if idx < len(dates) && dates[idx] == day {
			booked = e.store.BookingsFor(day)
			idx++
		}
		if slot, ok := e.firstFree(day, booked, from, day == startDay); ok {
			return slot, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: searched %s to %s", ErrNoAvailabilityFound, startDay, lastDay)
}

func (e *Engine) firstFree(day civil.Date, booked []Interval, from time.Time, firstDay bool) (Interval, bool) {
	win := e.window(day)
	for _, slot := range e.daySlots(day) {
		if firstDay && slot.Start.Before(from) {
			continue
		}
		if blockedByAny(slot, booked) {
			continue
		}
		if slot.Start.Before(win.Start) || slot.End.After(win.End) {
			continue
		}
		return slot, true
	}
	return Interval{}, false
}

// startDay is the local date of from, moved to the next date once the working window of that
// day has ended.
func (e *Engine) startDay(from time.Time) civil.Date {
	local := from.In(e.cfg.Location)
	day := civil.DateOf(local)
	if local.Hour()*60+local.Minute() >= e.cfg.WorkEndMinute {
		day = day.AddDays(1)
	}
	return day
}

// searchDates returns the index of the first date not before day, or len(dates).
func searchDates(dates []civil.Date, day civil.Date) int {
	return sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(day)
	})
}
