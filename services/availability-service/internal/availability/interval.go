package availability

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Validate() error {
	if !i.Start.Before(i.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidInterval,
			i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
	}
	return nil
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two ranges share any instant. Touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func overlapsAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

// blockedBy is the conflict test used when searching for the next slot: a booking blocks a
// slot when either slot endpoint falls strictly inside the booking, or when both share the
// same bounds. Bookings nested strictly inside a slot do not block it.
func (i Interval) blockedBy(b Interval) bool {
	if i.Start.Equal(b.Start) && i.End.Equal(b.End) {
		return true
	}
	return strictlyInside(i.Start, b) || strictlyInside(i.End, b)
}

func strictlyInside(t time.Time, b Interval) bool {
	return t.After(b.Start) && t.Before(b.End)
}

func blockedByAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.blockedBy(b) {
			return true
		}
	}
	return false
}
