package otelx

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	tc := CaptureTraceContext(parent)
	if tc.Traceparent == "" {
		t.Fatal("expected traceparent to be captured")
	}

	restored := trace.SpanContextFromContext(tc.Restore(context.Background()))
	if restored.TraceID() != traceID {
		t.Fatalf("expected trace id %s, got %s", traceID, restored.TraceID())
	}
}

type ctxMarker struct{}

func TestEmptyTraceContextKeepsContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxMarker{}, "x")
	if got := (TraceContext{}).Restore(ctx); got != ctx {
		t.Fatal("expected the same context back")
	}
}
