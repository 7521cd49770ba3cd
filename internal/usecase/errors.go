package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	"github.com/riskibarqy/volleyball-bot/internal/domain/team"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrAlreadyRegistered     = errors.New("player already registered")
	ErrNoActiveSession       = errors.New("no active survey session")

	ErrUnknownOption       = survey.ErrUnknownOption
	ErrStaleAnswer         = survey.ErrStaleAnswer
	ErrPlayerNotFound      = player.ErrNotFound
	ErrEventNotFound       = event.ErrNotFound
	ErrAlreadyJoined       = event.ErrAlreadyJoined
	ErrEventFull           = event.ErrFull
	ErrInsufficientPlayers = team.ErrInsufficientPlayers
)

func dependencyError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}
