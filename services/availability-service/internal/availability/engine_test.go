package availability

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/golang-sql/civil"
)

type fixtureStore map[civil.Date][]Interval

func (s fixtureStore) BookingsFor(d civil.Date) []Interval { return s[d] }

func (s fixtureStore) Dates() []civil.Date {
	out := make([]civil.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func clock(d civil.Date, hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

func span(d civil.Date, fromH, fromM, toH, toM int) Interval {
	return Interval{Start: clock(d, fromH, fromM, time.UTC), End: clock(d, toH, toM, time.UTC)}
}

func newEngine(t *testing.T, cfg Config, store Store) *Engine {
	t.Helper()
	e, err := New(cfg, store)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func assertIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d: expected %s-%s, got %s-%s", i,
				want[i].Start.Format(time.RFC3339), want[i].End.Format(time.RFC3339),
				got[i].Start.Format(time.RFC3339), got[i].End.Format(time.RFC3339))
		}
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	cases := map[string]Config{
		"zero slot":      {WorkStartMinute: 570, WorkEndMinute: 1200, SlotDurationMinutes: 0, LookaheadDays: 1},
		"empty window":   {WorkStartMinute: 600, WorkEndMinute: 600, SlotDurationMinutes: 30, LookaheadDays: 1},
		"past midnight":  {WorkStartMinute: 600, WorkEndMinute: 1441, SlotDurationMinutes: 30, LookaheadDays: 1},
		"negative start": {WorkStartMinute: -1, WorkEndMinute: 600, SlotDurationMinutes: 30, LookaheadDays: 1},
		"no lookahead":   {WorkStartMinute: 570, WorkEndMinute: 1200, SlotDurationMinutes: 30},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNewDefaultsLocationToUTC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = nil
	e := newEngine(t, cfg, nil)
	if e.Config().Location != time.UTC {
		t.Fatalf("expected UTC, got %v", e.Config().Location)
	}
}

func TestDaySlotsDropsTrailingPartialSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkStartMinute = 9 * 60
	cfg.WorkEndMinute = 10*60 + 45
	cfg.SlotDurationMinutes = 30
	e := newEngine(t, cfg, nil)

	d := civil.Date{Year: 2026, Month: time.March, Day: 2}
	slots := e.daySlots(d)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if last := slots[2]; !last.End.Equal(clock(d, 10, 30, time.UTC)) {
		t.Fatalf("expected last slot to end 10:30, got %s", last.End.Format(time.RFC3339))
	}
}

func TestBlockedByPolicy(t *testing.T) {
	d := civil.Date{Year: 2026, Month: time.March, Day: 2}
	slot := span(d, 10, 0, 10, 30)

	cases := []struct {
		name    string
		booking Interval
		blocked bool
	}{
		{"exact bounds", span(d, 10, 0, 10, 30), true},
		{"start inside", span(d, 9, 0, 10, 15), true},
		{"end inside", span(d, 10, 15, 11, 0), true},
		{"touching before", span(d, 9, 30, 10, 0), false},
		{"touching after", span(d, 10, 30, 11, 0), false},
		{"nested inside slot", span(d, 10, 5, 10, 20), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := slot.blockedBy(tc.booking); got != tc.blocked {
				t.Fatalf("expected blocked=%v, got %v", tc.blocked, got)
			}
		})
	}
}

func TestIntervalValidate(t *testing.T) {
	d := civil.Date{Year: 2026, Month: time.March, Day: 2}
	if err := span(d, 10, 0, 10, 0).Validate(); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for empty interval, got %v", err)
	}
	if err := span(d, 11, 0, 10, 0).Validate(); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for reversed interval, got %v", err)
	}
	if err := span(d, 10, 0, 10, 30).Validate(); err != nil {
		t.Fatalf("expected valid interval, got %v", err)
	}
}

func springForwardEngine(t *testing.T, store Store) (*Engine, *time.Location, civil.Date) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Location = loc
	cfg.WorkStartMinute = 60
	cfg.WorkEndMinute = 240
	return newEngine(t, cfg, store), loc, civil.Date{Year: 2026, Month: time.March, Day: 8}
}

func TestDaySlotsTileSkippedHour(t *testing.T) {
	e, _, d := springForwardEngine(t, nil)

	// 01:00 EST to 04:00 EDT is two hours of elapsed time.
	slots := e.daySlots(d)
	want := []Interval{
		{Start: time.Date(2026, time.March, 8, 6, 0, 0, 0, time.UTC), End: time.Date(2026, time.March, 8, 6, 30, 0, 0, time.UTC)},
		{Start: time.Date(2026, time.March, 8, 6, 30, 0, 0, time.UTC), End: time.Date(2026, time.March, 8, 7, 0, 0, 0, time.UTC)},
		{Start: time.Date(2026, time.March, 8, 7, 0, 0, 0, time.UTC), End: time.Date(2026, time.March, 8, 7, 30, 0, 0, time.UTC)},
		{Start: time.Date(2026, time.March, 8, 7, 30, 0, 0, time.UTC), End: time.Date(2026, time.March, 8, 8, 0, 0, 0, time.UTC)},
	}
	assertIntervals(t, slots, want)
}
