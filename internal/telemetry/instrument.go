// internal/telemetry/instrument.go
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
)

// Instrument traces workflow operations and counts their outcomes.
// Tracer and meter are resolved through the global providers on every call,
// so a provider installed after construction is still honoured.
type Instrument struct {
	scope string
}

func NewInstrument(component string) *Instrument {
	return &Instrument{scope: ServiceName + "/" + component}
}

// Start opens a span named op. The returned func ends it; pass the address of
// the operation's error so the span and the outcome counter see the result.
//
//	ctx, end := inst.Start(ctx, "circulation.approve_request")
//	defer end(&err)
func (i *Instrument) Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := otel.Tracer(i.scope).Start(ctx, op, trace.WithAttributes(attrs...))

	return ctx, func(errp *error) {
		outcome := "ok"
		if errp != nil && *errp != nil {
			kind := apperr.KindOf(*errp)
			outcome = string(kind)
			span.SetAttributes(attribute.String("error.kind", outcome))
			if kind == apperr.KindInternal {
				span.RecordError(*errp)
				span.SetStatus(codes.Error, (*errp).Error())
			}
		}
		i.count(ctx, op, outcome)
		span.End()
	}
}

func (i *Instrument) count(ctx context.Context, op, outcome string) {
	counter, err := otel.Meter(i.scope).Int64Counter(
		"libraxpert.operations",
		metric.WithDescription("Workflow operations by outcome"),
	)
	if err != nil {
		otel.Handle(err)
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
