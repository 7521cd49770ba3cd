package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

const maxOptionalBodyBytes = 1 << 20

// UpdateDispatcher hands webhook updates to the bot worker pool.
type UpdateDispatcher interface {
	Dispatch(ctx context.Context, update telegram.Update) error
}

// ServiceStatus is what the root status page reports.
type ServiceStatus struct {
	Mode     string
	Bot      string
	Database string
}

type StatusReporter interface {
	Status(ctx context.Context) ServiceStatus
}

type Services struct {
	Registration *usecase.RegistrationService
	Players      *usecase.PlayerService
	Events       *usecase.EventService
	Teams        *usecase.TeamService
}

type Handler struct {
	registrationService *usecase.RegistrationService
	playerService       *usecase.PlayerService
	eventService        *usecase.EventService
	teamService         *usecase.TeamService
	dispatcher          UpdateDispatcher
	status              StatusReporter
	metrics             *metrics.Recorder
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	services Services,
	dispatcher UpdateDispatcher,
	status StatusReporter,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		registrationService: services.Registration,
		playerService:       services.Players,
		eventService:        services.Events,
		teamService:         services.Teams,
		dispatcher:          dispatcher,
		status:              status,
		metrics:             recorder,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, payload)
}

// decodeOptionalRequest leaves payload untouched when the body is empty or
// only whitespace, whatever the declared content length.
func (h *Handler) decodeOptionalRequest(ctx context.Context, r *http.Request, payload any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOptionalBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return h.decodeRequest(ctx, r, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathIdentity(r *http.Request) (int64, error) {
	return parseIdentity(r.PathValue("identity"), "identity")
}

func pathEventID(r *http.Request) (int64, error) {
	return parseIdentity(r.PathValue("eventID"), "eventID")
}
