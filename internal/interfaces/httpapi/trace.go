package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var tracer = otel.Tracer("volleyball-bot/internal/interfaces/httpapi")

// startSpan opens spans for handler methods under the otelhttp server span.
// Middleware and helpers reuse the request span, and untraced routes such
// as /healthz get a non-recording span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !shouldCreateHTTPAPISpan(name) || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
