package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

type contextKey string

const (
	callerContextKey contextKey = "caller_identity"
	routeContextKey  contextKey = "route_label"
)

const callerIdentityHeader = "X-Caller-Identity"

func withCaller(ctx context.Context, identity int64) context.Context {
	return context.WithValue(ctx, callerContextKey, identity)
}

func callerFromContext(ctx context.Context) (int64, bool) {
	identity, ok := ctx.Value(callerContextKey).(int64)
	return identity, ok
}

// requireCaller returns the organizer identity for operations that need one.
func requireCaller(ctx context.Context) (int64, error) {
	identity, ok := callerFromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("%w: %s header is required", usecase.ErrUnauthorized, callerIdentityHeader)
	}
	return identity, nil
}

func parseIdentity(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, field)
	}
	return value, nil
}

type routeLabel struct {
	pattern string
}

func withRouteLabel(ctx context.Context, label *routeLabel) context.Context {
	return context.WithValue(ctx, routeContextKey, label)
}

func routeLabelFromContext(ctx context.Context) (*routeLabel, bool) {
	label, ok := ctx.Value(routeContextKey).(*routeLabel)
	return label, ok
}
