package httpapi

import (
	"net/http"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	items, err := h.eventService.ListActive(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]eventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toEventDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateEvent")
	defer span.End()

	caller, err := requireCaller(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createEventRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.eventService.Create(ctx, caller, usecase.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Date:        req.Date,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create event failed", "caller", caller, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toEventDTO(event.Summary{Event: created}))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID, err := pathEventID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toEventDTO(summary))
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListParticipants")
	defer span.End()

	eventID, err := pathEventID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.eventService.Roster(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]participantDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toParticipantDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinEvent")
	defer span.End()

	eventID, err := pathEventID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinEventRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	participant, err := h.eventService.Join(ctx, eventID, req.Identity)
	h.metrics.EventJoin(joinOutcome(err))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]any{
		"eventId":  participant.EventID,
		"playerId": participant.PlayerID,
		"joinedAt": participant.JoinedAt,
	})
}

func (h *Handler) BalanceTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BalanceTeams")
	defer span.End()

	caller, err := requireCaller(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID, err := pathEventID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req balanceTeamsRequest
	if err := h.decodeOptionalRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	balance, err := h.teamService.Balance(ctx, caller, eventID, req.Teams)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.metrics.TeamsBalanced()

	writeSuccess(ctx, w, http.StatusOK, toTeamBalanceDTO(balance))
}

func joinOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		return metrics.OutcomeError
	}
	return metrics.OutcomeRefused
}
