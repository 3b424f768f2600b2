package refresh

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/golang-sql/civil"

	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/bookings"
)

// Loader builds a complete snapshot from scratch.
type Loader interface {
	Load(ctx context.Context) (*bookings.Snapshot, error)
}

// IntervalSource is satisfied by storage.AppointmentRepository.
type IntervalSource interface {
	ListBookedIntervals(ctx context.Context, staffID string, start, end time.Time) ([]availability.Interval, error)
}

// DBLoader loads the bookings of one staff member for a window of days starting today.
type DBLoader struct {
	source  IntervalSource
	staffID string
	loc     *time.Location
	days    int
	now     func() time.Time
}

func NewDBLoader(source IntervalSource, staffID string, loc *time.Location, days int) *DBLoader {
	if loc == nil {
		loc = time.UTC
	}
	return &DBLoader{source: source, staffID: staffID, loc: loc, days: days, now: time.Now}
}

func (l *DBLoader) Load(ctx context.Context) (*bookings.Snapshot, error) {
	from := civil.DateOf(l.now().In(l.loc))
	start := from.In(l.loc)
	end := from.AddDays(l.days).In(l.loc)

	intervals, err := l.source.ListBookedIntervals(ctx, l.staffID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list booked intervals: %w", err)
	}
	return bookings.Build(l.loc, from, l.days, intervals)
}

// GeneratedLoader produces random bookings when no database is configured. Each load reuses
// the seed, so repeated refreshes on the same day produce the same snapshot.
type GeneratedLoader struct {
	cfg  availability.Config
	days int
	seed uint64
	now  func() time.Time
}

func NewGeneratedLoader(cfg availability.Config, days int, seed uint64) *GeneratedLoader {
	return &GeneratedLoader{cfg: cfg, days: days, seed: seed, now: time.Now}
}

func (l *GeneratedLoader) Load(context.Context) (*bookings.Snapshot, error) {
	loc := l.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	from := civil.DateOf(l.now().In(loc))
	return bookings.Generate(l.cfg, from, l.days, rand.New(rand.NewPCG(l.seed, l.seed)))
}
