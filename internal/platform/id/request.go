package id

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const maxRequestIDLen = 128

type requestIDKey struct{}

// NewRequestID returns a time-ordered identifier for one inbound request.
func NewRequestID() string {
	if v, err := uuid.NewV7(); err == nil {
		return v.String()
	}
	return uuid.NewString()
}

// SanitizeRequestID accepts a caller-supplied id when it is short and
// printable, and returns "" otherwise.
func SanitizeRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return raw
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
