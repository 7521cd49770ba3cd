package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrAlreadyJoined = errors.New("player already joined event")
	ErrFull          = errors.New("event is full")
)

// Event is a scheduled game session organized by an admin.
type Event struct {
	ID          int64
	Name        string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
	Active      bool
	CreatedAt   time.Time
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event name is required")
	}
	if len(e.Name) > 100 {
		return fmt.Errorf("event name must be at most 100 characters")
	}
	if e.Capacity <= 0 {
		return fmt.Errorf("event capacity must be greater than zero")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event date is required")
	}

	return nil
}

// Participant links a player to an event.
type Participant struct {
	ID       int64
	EventID  int64
	PlayerID int64
	JoinedAt time.Time
}

// Entry is a participant together with the player snapshot read alongside it.
type Entry struct {
	Participant Participant
	Player      player.Player
}

// Summary is an event with its current participant count.
type Summary struct {
	Event            Event
	ParticipantCount int
}

func (s Summary) SpotsLeft() int {
	left := s.Event.Capacity - s.ParticipantCount
	if left < 0 {
		return 0
	}
	return left
}
