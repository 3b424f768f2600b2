package availability

import "errors"

var (
	// ErrInvalidRange is returned when a listing range ends before it starts.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidConfiguration is returned for an unusable working window, slot duration or horizon.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNoAvailabilityFound is returned when a search exhausts the store or its horizon.
	ErrNoAvailabilityFound = errors.New("no availability found")
	// ErrInvalidInterval is returned for intervals whose start is not before their end.
	ErrInvalidInterval = errors.New("invalid interval")
)
