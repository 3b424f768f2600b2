package refresh

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	otelx "github.com/md-rashed-zaman/apptavailability/libs/otel"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/bookings"
)

type Worker struct {
	loader    Loader
	holder    *bookings.Holder
	logger    *slog.Logger
	interval  time.Duration
	triggers  chan otelx.TraceContext
	onRefresh func(*bookings.Snapshot)
}

type WorkerConfig struct {
	Interval time.Duration
	// OnRefresh runs after every successful swap.
	OnRefresh func(*bookings.Snapshot)
}

func NewWorker(loader Loader, holder *bookings.Holder, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Worker{
		loader:    loader,
		holder:    holder,
		logger:    logger,
		interval:  cfg.Interval,
		triggers:  make(chan otelx.TraceContext, 1),
		onRefresh: cfg.OnRefresh,
	}
}

// Run loads a snapshot immediately, then on every tick and every trigger until ctx is done.
// Failed loads keep the previous snapshot and are retried on the next tick.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refreshLogged(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refreshLogged(ctx, "tick")
		case tc := <-w.triggers:
			w.refreshLogged(tc.Restore(ctx), "event")
		}
	}
}

// Trigger asks Run for an early refresh. Requests arriving while one is pending are coalesced.
func (w *Worker) Trigger(ctx context.Context) {
	select {
	case w.triggers <- otelx.CaptureTraceContext(ctx):
	default:
	}
}

// Refresh loads and installs a new snapshot.
func (w *Worker) Refresh(ctx context.Context) (*bookings.Snapshot, error) {
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	w.holder.Swap(snap)
	if w.onRefresh != nil {
		w.onRefresh(snap)
	}
	return snap, nil
}

func (w *Worker) refreshLogged(ctx context.Context, reason string) {
	ctx, span := otel.Tracer("availability").Start(ctx, "snapshot.refresh",
		trace.WithAttributes(attribute.String("refresh.reason", reason)),
	)
	defer span.End()

	start := time.Now()
	snap, err := w.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		w.logger.Error("snapshot refresh failed", "reason", reason, "err", err)
		return
	}
	w.logger.Info("snapshot refreshed",
		"reason", reason,
		"snapshot_id", snap.ID,
		"days", snap.Days(),
		"appointments", snap.Appointments(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
