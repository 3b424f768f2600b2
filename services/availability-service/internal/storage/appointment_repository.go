package storage

import (
	"context"
	"errors"
	"time"

	"github.com/md-rashed-zaman/apptavailability/libs/db"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
)

// AppointmentRepository reads booked appointments owned by the booking service. It never writes.
type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

var ErrStaffRequired = errors.New("staff id is required")

// ListBookedIntervals returns the staff member's booked appointments overlapping [start, end),
// ordered by start.
func (r *AppointmentRepository) ListBookedIntervals(ctx context.Context, staffID string, start, end time.Time) ([]availability.Interval, error) {
	if staffID == "" {
		return nil, ErrStaffRequired
	}
	rows, err := r.pool.Query(ctx, `
		SELECT start_time, end_time
		FROM appointments
		WHERE staff_id = $1
			AND status = 'booked'
			AND start_time < $3
			AND end_time > $2
			AND end_time > start_time
		ORDER BY start_time ASC
	`, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}
