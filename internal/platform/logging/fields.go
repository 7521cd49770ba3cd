package logging

import (
	"context"

	"github.com/riskibarqy/volleyball-bot/internal/platform/id"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// fieldsFromArgs turns alternating key/value pairs into zap fields.
// Non-string keys become "arg" and a trailing key gets a nil value.
func fieldsFromArgs(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for len(args) > 0 {
		key, _ := args[0].(string)
		if key == "" {
			key = "arg"
		}
		if len(args) == 1 {
			fields = append(fields, zap.Any(key, nil))
			break
		}

		switch v := args[1].(type) {
		case zap.Field:
			fields = append(fields, v)
		case error:
			fields = append(fields, zap.NamedError(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
		args = args[2:]
	}
	return fields
}

func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if requestID := id.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return fields
}
