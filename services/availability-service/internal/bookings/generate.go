package bookings

import (
	"math/rand/v2"
	"time"

	"github.com/golang-sql/civil"

	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
)

const maxGeneratedPerDay = 5

// Generate fills days dates starting at from with up to five random, slot-aligned bookings per
// day inside the working window of cfg. Bookings may repeat or overlap. The same rng seed yields
// the same snapshot.
func Generate(cfg availability.Config, from civil.Date, days int, rng *rand.Rand) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	slots := (cfg.WorkEndMinute - cfg.WorkStartMinute) / cfg.SlotDurationMinutes
	out := make([]DayBooking, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDays(i)
		day := DayBooking{Date: date}
		if slots > 0 {
			n := rng.IntN(maxGeneratedPerDay + 1)
			for j := 0; j < n; j++ {
				start := cfg.WorkStartMinute + rng.IntN(slots)*cfg.SlotDurationMinutes
				length := (1 + rng.IntN(2)) * cfg.SlotDurationMinutes
				end := min(start+length, cfg.WorkEndMinute)
				day.Appointments = append(day.Appointments, availability.Interval{
					Start: time.Date(date.Year, date.Month, date.Day, 0, start, 0, 0, loc),
					End:   time.Date(date.Year, date.Month, date.Day, 0, end, 0, 0, loc),
				})
			}
		}
		out = append(out, day)
	}
	return NewSnapshot(out)
}
