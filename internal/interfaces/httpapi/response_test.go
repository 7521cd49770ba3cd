package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volleyball-bot/internal/platform/id"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "unauthenticated", err: fmt.Errorf("%w: no token", errUnauthenticated), want: http.StatusUnauthorized},
		{name: "not organizer", err: fmt.Errorf("%w: identity=5", usecase.ErrUnauthorized), want: http.StatusForbidden},
		{name: "player not found", err: usecase.ErrPlayerNotFound, want: http.StatusNotFound},
		{name: "event not found", err: usecase.ErrEventNotFound, want: http.StatusNotFound},
		{name: "no session", err: usecase.ErrNoActiveSession, want: http.StatusNotFound},
		{name: "already registered", err: usecase.ErrAlreadyRegistered, want: http.StatusConflict},
		{name: "already joined", err: usecase.ErrAlreadyJoined, want: http.StatusConflict},
		{name: "event full", err: usecase.ErrEventFull, want: http.StatusConflict},
		{name: "unknown option", err: usecase.ErrUnknownOption, want: http.StatusUnprocessableEntity},
		{name: "stale answer", err: usecase.ErrStaleAnswer, want: http.StatusUnprocessableEntity},
		{name: "insufficient players", err: usecase.ErrInsufficientPlayers, want: http.StatusUnprocessableEntity},
		{name: "dependency", err: fmt.Errorf("%w: db down", usecase.ErrDependencyUnavailable), want: http.StatusServiceUnavailable},
		{
			name: "dependency wrapping a domain error",
			err:  fmt.Errorf("%w: get event: %w", usecase.ErrDependencyUnavailable, usecase.ErrEventNotFound),
			want: http.StatusServiceUnavailable,
		},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err).HTTPStatus; got != tt.want {
				t.Fatalf("mapError(%v)=%d want=%d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal error leaked into response: %s", rec.Body.String())
	}
}

func TestWriteError_DependencyFailureHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := id.WithRequestID(context.Background(), "req-503")
	writeError(ctx, rec, fmt.Errorf("%w: join event: dial tcp 10.0.0.5:5432", usecase.ErrDependencyUnavailable))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("dependency detail leaked into response: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"req-503"`) {
		t.Fatalf("expected request id in envelope, got %s", rec.Body.String())
	}
}
