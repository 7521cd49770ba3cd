package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer   = otel.Tracer("volleyball-bot/internal/usecase")
	noopSpan = trace.SpanFromContext(context.Background())
)

// startUsecaseSpan opens a child span only when the caller is already
// traced; bot updates arriving without a span stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noopSpan
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan marks the span failed when *err is a dependency failure and
// ends it. Refusals such as a full event are expected outcomes.
func finishSpan(span trace.Span, err *error) {
	if err != nil && *err != nil {
		span.RecordError(*err)
		if errors.Is(*err, ErrDependencyUnavailable) {
			span.SetStatus(codes.Error, (*err).Error())
		}
	}
	span.End()
}
