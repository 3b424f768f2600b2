package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/apptavailability/libs/httpx"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptavailability/services/availability-service/internal/bookings"
)

// SnapshotSource is satisfied by bookings.Holder.
type SnapshotSource interface {
	Load() *bookings.Snapshot
}

type AvailabilityHandler struct {
	engine       *availability.Engine
	snapshots    SnapshotSource
	logger       *slog.Logger
	maxRangeDays int
}

const defaultMaxRangeDays = 366

// NewAvailabilityHandler serves queries against the current snapshot. Listing ranges touching
// more than maxRangeDays calendar days are rejected; zero or less means defaultMaxRangeDays.
func NewAvailabilityHandler(engine *availability.Engine, snapshots SnapshotSource, logger *slog.Logger, maxRangeDays int) *AvailabilityHandler {
	if maxRangeDays <= 0 {
		maxRangeDays = defaultMaxRangeDays
	}
	return &AvailabilityHandler{engine: engine, snapshots: snapshots, logger: logger, maxRangeDays: maxRangeDays}
}

type rangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toSlotItem(iv availability.Interval) slotItem {
	return slotItem{
		StartTime: iv.Start.UTC().Format(time.RFC3339),
		EndTime:   iv.End.UTC().Format(time.RFC3339),
	}
}

// List serves every free interval of the days touched by from..to.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	from, err := h.parseTime(req.From)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	to, err := h.parseTime(req.To)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid to: "+err.Error())
		return
	}
	if days := h.engine.DateOf(to).DaysSince(h.engine.DateOf(from)) + 1; days > h.maxRangeDays {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("range spans %d days, at most %d allowed", days, h.maxRangeDays))
		return
	}
	engine, ok := h.boundEngine(w)
	if !ok {
		return
	}

	_, span := otel.Tracer("availability").Start(r.Context(), "availability.list",
		trace.WithAttributes(
			attribute.String("availability.from", from.UTC().Format(time.RFC3339)),
			attribute.String("availability.to", to.UTC().Format(time.RFC3339)),
		),
	)
	defer span.End()

	free, err := engine.ListAvailabilities(from, to)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.writeEngineError(w, err)
		return
	}
	span.SetAttributes(attribute.Int("availability.intervals", len(free)))

	resp := make([]slotItem, 0, len(free))
	for _, iv := range free {
		resp = append(resp, toSlotItem(iv))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Next serves the earliest free slot starting at or after from.
func (h *AvailabilityHandler) Next(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	from, err := h.parseTime(req.From)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	engine, ok := h.boundEngine(w)
	if !ok {
		return
	}

	_, span := otel.Tracer("availability").Start(r.Context(), "availability.next",
		trace.WithAttributes(attribute.String("availability.from", from.UTC().Format(time.RFC3339))),
	)
	defer span.End()

	slot, err := engine.NextAvailability(from)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.writeEngineError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSlotItem(slot))
}

// decode accepts a JSON body on POST and query parameters on GET.
func (h *AvailabilityHandler) decode(w http.ResponseWriter, r *http.Request) (rangeRequest, bool) {
	var req rangeRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.From, req.To = q.Get("from"), q.Get("to")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
			return req, false
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return req, false
	}
	return req, true
}

// parseTime accepts an RFC 3339 instant or a bare YYYY-MM-DD date, which means local midnight.
func (h *AvailabilityHandler) parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("value is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 time or YYYY-MM-DD date, got %q", raw)
	}
	return d.In(h.engine.Config().Location), nil
}

func (h *AvailabilityHandler) boundEngine(w http.ResponseWriter) (*availability.Engine, bool) {
	snap := h.snapshots.Load()
	if snap == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "availability not loaded yet")
		return nil, false
	}
	return h.engine.WithStore(snap), true
}

func (h *AvailabilityHandler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidRange):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, availability.ErrNoAvailabilityFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("availability query failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
