package availability

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Config is fixed for the lifetime of an Engine. Minutes are counted from local midnight in
// Location.
type Config struct {
	WorkStartMinute     int
	WorkEndMinute       int
	SlotDurationMinutes int
	// LookaheadDays bounds NextAvailability to that many calendar days, the starting day included.
	LookaheadDays int
	// Location defines calendar days. Nil means UTC.
	Location *time.Location
}

// DefaultConfig is a 09:30-20:00 day cut into 30 minute slots, searched up to a year ahead.
func DefaultConfig() Config {
	return Config{
		WorkStartMinute:     570,
		WorkEndMinute:       1200,
		SlotDurationMinutes: 30,
		LookaheadDays:       366,
		Location:            time.UTC,
	}
}

func (c Config) Validate() error {
	if c.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: slot duration must be positive (got %d)", ErrInvalidConfiguration, c.SlotDurationMinutes)
	}
	if c.WorkStartMinute < 0 || c.WorkEndMinute > minutesPerDay {
		return fmt.Errorf("%w: working window %d-%d must lie within 0-%d", ErrInvalidConfiguration, c.WorkStartMinute, c.WorkEndMinute, minutesPerDay)
	}
	if c.WorkStartMinute >= c.WorkEndMinute {
		return fmt.Errorf("%w: working window start %d must be before end %d", ErrInvalidConfiguration, c.WorkStartMinute, c.WorkEndMinute)
	}
	if c.LookaheadDays <= 0 {
		return fmt.Errorf("%w: lookahead must be at least one day (got %d)", ErrInvalidConfiguration, c.LookaheadDays)
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
