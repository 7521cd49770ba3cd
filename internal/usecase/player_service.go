package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
)

// PlayerProfile is what a player sees about themselves.
type PlayerProfile struct {
	Player         player.Player
	SurveyPending  bool
	SurveyPosition int
}

type PlayerService struct {
	playerRepo  player.Repository
	catalogRepo survey.CatalogRepository
	sessions    survey.SessionStore
}

func NewPlayerService(playerRepo player.Repository, catalogRepo survey.CatalogRepository, sessions survey.SessionStore) *PlayerService {
	return &PlayerService{
		playerRepo:  playerRepo,
		catalogRepo: catalogRepo,
		sessions:    sessions,
	}
}

func (s *PlayerService) Profile(ctx context.Context, identity int64) (PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Profile")
	defer span.End()

	item, exists, err := s.playerRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return PlayerProfile{}, dependencyError("get player", err)
	}
	if !exists {
		return PlayerProfile{}, fmt.Errorf("%w: identity=%d", ErrPlayerNotFound, identity)
	}

	profile := PlayerProfile{Player: item}
	session, pending, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return PlayerProfile{}, dependencyError("get survey session", err)
	}
	if !pending {
		return profile, nil
	}

	// A session past the last question is leftover from a completion whose
	// cleanup failed.
	catalog, err := s.catalogRepo.LoadCatalog(ctx)
	if err != nil {
		return PlayerProfile{}, dependencyError("load survey catalog", err)
	}
	if !session.Completed(catalog) {
		profile.SurveyPending = true
		profile.SurveyPosition = session.Position
	}

	return profile, nil
}
