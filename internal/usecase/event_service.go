package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type CreateEventInput struct {
	Name        string
	Description string
	Location    string
	Capacity    int
	Date        time.Time
}

type EventService struct {
	eventRepo  event.Repository
	playerRepo player.Repository
	admins     AdminSet
	logger     *logging.Logger
	now        func() time.Time
}

func NewEventService(eventRepo event.Repository, playerRepo player.Repository, admins AdminSet, logger *logging.Logger) *EventService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EventService{
		eventRepo:  eventRepo,
		playerRepo: playerRepo,
		admins:     admins,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *EventService) Create(ctx context.Context, caller int64, input CreateEventInput) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Create")
	defer span.End()

	if err := s.admins.require(caller); err != nil {
		return event.Event{}, err
	}

	now := s.now().UTC()
	item := event.Event{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Capacity:    input.Capacity,
		Date:        input.Date,
		Active:      true,
		CreatedAt:   now,
	}
	if item.Date.IsZero() {
		item.Date = now
	}
	if err := item.Validate(); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.eventRepo.Create(ctx, item)
	if err != nil {
		return event.Event{}, dependencyError("create event", err)
	}

	s.logger.InfoContext(ctx, "event created", "event_id", created.ID, "capacity", created.Capacity, "caller", caller)

	return created, nil
}

func (s *EventService) ListActive(ctx context.Context) ([]event.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListActive")
	defer span.End()

	items, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return nil, dependencyError("list active events", err)
	}

	return items, nil
}

func (s *EventService) Get(ctx context.Context, eventID int64) (event.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Get")
	defer span.End()

	item, err := s.activeEvent(ctx, eventID)
	if err != nil {
		return event.Summary{}, err
	}

	count, err := s.eventRepo.CountParticipants(ctx, eventID)
	if err != nil {
		return event.Summary{}, dependencyError("count participants", err)
	}

	return event.Summary{Event: item, ParticipantCount: count}, nil
}

// Join adds the player behind identity to the event roster. Capacity is
// enforced by the repository in the same unit as the insert.
func (s *EventService) Join(ctx context.Context, eventID, identity int64) (_ event.Participant, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Join",
		attribute.Int64("event.id", eventID),
		attribute.Int64("player.identity", identity),
	)
	defer finishSpan(span, &err)

	if _, err := s.activeEvent(ctx, eventID); err != nil {
		return event.Participant{}, err
	}

	joiner, exists, err := s.playerRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return event.Participant{}, dependencyError("get player", err)
	}
	if !exists {
		return event.Participant{}, fmt.Errorf("%w: identity=%d", ErrPlayerNotFound, identity)
	}

	participant, err := s.eventRepo.Join(ctx, eventID, joiner.ID, s.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, event.ErrNotFound):
		return event.Participant{}, fmt.Errorf("%w: event=%d", ErrEventNotFound, eventID)
	case errors.Is(err, event.ErrAlreadyJoined):
		return event.Participant{}, fmt.Errorf("%w: event=%d player=%d", ErrAlreadyJoined, eventID, joiner.ID)
	case errors.Is(err, event.ErrFull):
		return event.Participant{}, fmt.Errorf("%w: event=%d", ErrEventFull, eventID)
	default:
		return event.Participant{}, dependencyError("join event", err)
	}

	s.logger.InfoContext(ctx, "player joined event", "event_id", eventID, "player_id", joiner.ID)

	return participant, nil
}

// Roster lists participants with their player snapshots in join order.
func (s *EventService) Roster(ctx context.Context, eventID int64) ([]event.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Roster")
	defer span.End()

	if _, err := s.activeEvent(ctx, eventID); err != nil {
		return nil, err
	}

	entries, err := s.eventRepo.ListEntries(ctx, eventID)
	if err != nil {
		return nil, dependencyError("list event entries", err)
	}

	return entries, nil
}

func (s *EventService) activeEvent(ctx context.Context, eventID int64) (event.Event, error) {
	return findActiveEvent(ctx, s.eventRepo, eventID)
}

func findActiveEvent(ctx context.Context, repo event.Repository, eventID int64) (event.Event, error) {
	if eventID <= 0 {
		return event.Event{}, fmt.Errorf("%w: event id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, dependencyError("get event", err)
	}
	if !exists || !item.Active {
		return event.Event{}, fmt.Errorf("%w: event=%d", ErrEventNotFound, eventID)
	}

	return item, nil
}
