package bookings

import (
	"context"
	"errors"
	"sync/atomic"
)

// Holder publishes the current Snapshot. Readers never observe a partially built store.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current snapshot, or nil before the first Swap.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap installs next and returns the snapshot it replaced.
func (h *Holder) Swap(next *Snapshot) *Snapshot {
	return h.current.Swap(next)
}

var ErrNoSnapshot = errors.New("no snapshot loaded")

func (h *Holder) ReadyCheck(context.Context) error {
	if h.Load() == nil {
		return ErrNoSnapshot
	}
	return nil
}
