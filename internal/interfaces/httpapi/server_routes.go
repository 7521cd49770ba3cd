package httpapi

import (
	"net/http"

	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
)

func handle(mux *http.ServeMux, pattern string, handler http.Handler) {
	mux.Handle(pattern, routed(pattern, handler))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, recorder *metrics.Recorder) {
	handle(mux, "GET /healthz", http.HandlerFunc(handler.Healthz))
	handle(mux, "GET /{$}", http.HandlerFunc(handler.StatusPage))
	handle(mux, "GET /favicon.ico", http.NotFoundHandler())
	if recorder != nil {
		handle(mux, "GET /metrics", recorder.Handler())
	}
}

func registerWebhookRoutes(mux *http.ServeMux, handler *Handler, secret string) {
	handle(mux, "POST /telegram/webhook", RequireWebhookSecret(secret, http.HandlerFunc(handler.TelegramWebhook)))
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, apiToken string) {
	handle(mux, "POST /v1/players", RequireAPIToken(apiToken, http.HandlerFunc(handler.RegisterPlayer)))
	handle(mux, "GET /v1/players/{identity}", RequireAPIToken(apiToken, http.HandlerFunc(handler.GetPlayer)))
	handle(mux, "GET /v1/players/{identity}/survey", RequireAPIToken(apiToken, http.HandlerFunc(handler.GetSurvey)))
	handle(mux, "POST /v1/players/{identity}/survey/answers", RequireAPIToken(apiToken, http.HandlerFunc(handler.SubmitSurveyAnswer)))
	handle(mux, "POST /v1/players/{identity}/survey/retake", RequireAPIToken(apiToken, http.HandlerFunc(handler.RetakeSurvey)))
}

func registerEventRoutes(mux *http.ServeMux, handler *Handler, apiToken string) {
	handle(mux, "GET /v1/events", RequireAPIToken(apiToken, http.HandlerFunc(handler.ListEvents)))
	handle(mux, "POST /v1/events", RequireAPIToken(apiToken, http.HandlerFunc(handler.CreateEvent)))
	handle(mux, "GET /v1/events/{eventID}", RequireAPIToken(apiToken, http.HandlerFunc(handler.GetEvent)))
	handle(mux, "GET /v1/events/{eventID}/participants", RequireAPIToken(apiToken, http.HandlerFunc(handler.ListParticipants)))
	handle(mux, "POST /v1/events/{eventID}/participants", RequireAPIToken(apiToken, http.HandlerFunc(handler.JoinEvent)))
	handle(mux, "POST /v1/events/{eventID}/teams", RequireAPIToken(apiToken, http.HandlerFunc(handler.BalanceTeams)))
}
