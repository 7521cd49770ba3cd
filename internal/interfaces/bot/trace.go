package bot

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var botTracer = otel.Tracer("volleyball-bot/internal/interfaces/bot")

// startUpdateSpan opens the span every update is handled under. Polled
// updates have no parent, so this is a root span for them.
func startUpdateSpan(ctx context.Context, updateID int64, kind string) (context.Context, trace.Span) {
	return botTracer.Start(ctx, "bot.HandleUpdate",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.Int64("telegram.update_id", updateID),
			attribute.String("telegram.update_kind", kind),
		),
	)
}
