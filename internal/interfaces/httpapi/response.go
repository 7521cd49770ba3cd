package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volleyball-bot/internal/platform/id"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "volleyball-bot"
)

// envelope follows the Google JSON style guide: either data or error.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	ID         string     `json:"id,omitempty"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorRules is evaluated in order; the first matching target wins.
var errorRules = []struct {
	targets []error
	mapped  mappedError
}{
	{[]error{usecase.ErrDependencyUnavailable}, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{[]error{errUnauthenticated}, mappedError{http.StatusUnauthorized, "unauthenticated", "UNAUTHENTICATED"}},
	{[]error{usecase.ErrUnauthorized}, mappedError{http.StatusForbidden, "notOrganizer", "PERMISSION_DENIED"}},
	{[]error{usecase.ErrInvalidInput}, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{[]error{usecase.ErrPlayerNotFound, usecase.ErrEventNotFound, usecase.ErrNoActiveSession}, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{[]error{usecase.ErrAlreadyRegistered, usecase.ErrAlreadyJoined}, mappedError{http.StatusConflict, "alreadyExists", "ALREADY_EXISTS"}},
	{[]error{usecase.ErrEventFull}, mappedError{http.StatusConflict, "eventFull", "RESOURCE_EXHAUSTED"}},
	{[]error{usecase.ErrUnknownOption, usecase.ErrStaleAnswer}, mappedError{http.StatusUnprocessableEntity, "invalidAnswer", "FAILED_PRECONDITION"}},
	{[]error{usecase.ErrInsufficientPlayers}, mappedError{http.StatusUnprocessableEntity, "insufficientPlayers", "FAILED_PRECONDITION"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func mapError(err error) mappedError {
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.mapped
			}
		}
	}
	return internalError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{
		APIVersion: googleAPIVersion,
		ID:         id.RequestIDFromContext(ctx),
		Data:       data,
	})
}

// writeError reports 4xx errors verbatim. Server-side failures only carry
// the status text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeFailure(ctx, w, mapError(err), err)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeFailure(ctx, w, internalError, nil)
}

func writeFailure(ctx context.Context, w http.ResponseWriter, mapped mappedError, err error) {
	msg := http.StatusText(mapped.HTTPStatus)
	if err != nil && mapped.HTTPStatus < http.StatusInternalServerError {
		msg = err.Error()
	}

	writeJSON(w, mapped.HTTPStatus, envelope{
		APIVersion: googleAPIVersion,
		ID:         id.RequestIDFromContext(ctx),
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: msg,
			Status:  mapped.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: msg}},
		},
	})
}
