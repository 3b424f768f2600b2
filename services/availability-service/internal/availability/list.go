package availability

import (
	"fmt"
	"time"
)

// ListAvailabilities returns the free time of every calendar day touched by
// [rangeStart, rangeEnd], as maximal intervals in increasing order. Adjacent free slots are
// merged, so no two results touch. Whole days are scanned: slots outside the instants of the
// range but inside a touched day are included.
//
// A fully booked range yields an empty slice and a nil error.
func (e *Engine) ListAvailabilities(rangeStart, rangeEnd time.Time) ([]Interval, error) {
	if rangeEnd.Before(rangeStart) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange,
			rangeEnd.Format(time.RFC3339), rangeStart.Format(time.RFC3339))
	}

	first, last := e.DateOf(rangeStart), e.DateOf(rangeEnd)
	free := make([]Interval, 0)
	for day := first; !day.After(last); day = day.AddDays(1) {
		booked := e.store.BookingsFor(day)
		for _, slot := range e.daySlots(day) {
			if overlapsAny(slot, booked) {
				continue
			}
			if n := len(free); n > 0 && free[n-1].End.Equal(slot.Start) {
				free[n-1].End = slot.End
				continue
			}
			free = append(free, slot)
		}
	}
	return free, nil
}
