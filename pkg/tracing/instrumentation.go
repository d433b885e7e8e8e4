package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Domain span attributes
const (
	VehicleIDKey     = attribute.Key("vehicle.id")
	VehicleStateKey  = attribute.Key("vehicle.state")
	RentalIDKey      = attribute.Key("rental.id")
	MaintenanceIDKey = attribute.Key("maintenance.id")
	SagaStepKey      = attribute.Key("saga.step")
)

// StartOperation opens a span for a coordinator operation. The returned
// func ends the span, marking it failed when err is non-nil.
func StartOperation(ctx context.Context, tracerName, operation string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := StartSpan(ctx, tracerName, operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
