package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/team"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// TeamBalance is a balanced partition of one event's roster.
type TeamBalance struct {
	Event  event.Event
	Teams  []team.Team
	Spread int
}

type TeamService struct {
	eventRepo        event.Repository
	admins           AdminSet
	defaultTeamCount int
	logger           *logging.Logger
}

func NewTeamService(eventRepo event.Repository, admins AdminSet, defaultTeamCount int, logger *logging.Logger) *TeamService {
	if defaultTeamCount < 1 {
		defaultTeamCount = 2
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		eventRepo:        eventRepo,
		admins:           admins,
		defaultTeamCount: defaultTeamCount,
		logger:           logger,
	}
}

// Balance splits the current roster of eventID into teamCount teams.
// A zero teamCount uses the configured default.
func (s *TeamService) Balance(ctx context.Context, caller, eventID int64, teamCount int) (_ TeamBalance, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Balance", attribute.Int64("event.id", eventID))
	defer finishSpan(span, &err)

	if err := s.admins.require(caller); err != nil {
		return TeamBalance{}, err
	}
	if teamCount == 0 {
		teamCount = s.defaultTeamCount
	}

	item, err := findActiveEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return TeamBalance{}, err
	}

	entries, err := s.eventRepo.ListEntries(ctx, eventID)
	if err != nil {
		return TeamBalance{}, dependencyError("list event entries", err)
	}

	members := make([]team.Member, 0, len(entries))
	for _, entry := range entries {
		members = append(members, team.Member{
			PlayerID: entry.Player.ID,
			Handle:   entry.Player.DisplayName(),
			Skill:    entry.Player.SkillValue,
		})
	}

	teams, err := team.Balance(members, teamCount)
	if err != nil {
		return TeamBalance{}, fmt.Errorf("balance event=%d: %w", eventID, err)
	}

	spread := team.Spread(teams)
	s.logger.InfoContext(ctx, "teams balanced",
		"event_id", eventID,
		"players", len(members),
		"teams", len(teams),
		"spread", spread,
	)

	return TeamBalance{Event: item, Teams: teams, Spread: spread}, nil
}
