package httpapi

import "net/http"

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req registerPlayerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	step, err := h.registrationService.Begin(ctx, req.Identity, req.Handle)
	if err != nil {
		h.logger.WarnContext(ctx, "register player failed", "identity", req.Identity, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toSurveyStepDTO(step))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	identity, err := pathIdentity(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.playerService.Profile(ctx, identity)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerProfileDTO{
		Player:         toPlayerDTO(profile.Player),
		SurveyPending:  profile.SurveyPending,
		SurveyPosition: profile.SurveyPosition,
	})
}

func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSurvey")
	defer span.End()

	identity, err := pathIdentity(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	step, err := h.registrationService.CurrentQuestion(ctx, identity)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toSurveyStepDTO(step))
}

func (h *Handler) SubmitSurveyAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitSurveyAnswer")
	defer span.End()

	identity, err := pathIdentity(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitAnswerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	step, err := h.registrationService.SubmitAnswer(ctx, identity, req.OptionID)
	if err != nil {
		h.logger.WarnContext(ctx, "submit survey answer failed", "identity", identity, "option_id", req.OptionID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if step.Completed {
		h.metrics.SurveyCompleted()
	}

	writeSuccess(ctx, w, http.StatusOK, toSurveyStepDTO(step))
}

func (h *Handler) RetakeSurvey(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RetakeSurvey")
	defer span.End()

	identity, err := pathIdentity(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	step, err := h.registrationService.Retake(ctx, identity)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toSurveyStepDTO(step))
}
