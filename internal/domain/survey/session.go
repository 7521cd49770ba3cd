package survey

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrStaleAnswer   = errors.New("stale answer")
)

// Session is the in-progress survey state of one player.
type Session struct {
	PlayerIdentity int64
	Position       int
	Answers        map[int]int64
	StartedAt      time.Time
	UpdatedAt      time.Time
}

func NewSession(identity int64, now time.Time) Session {
	return Session{
		PlayerIdentity: identity,
		Position:       1,
		Answers:        make(map[int]int64),
		StartedAt:      now,
		UpdatedAt:      now,
	}
}

// Completed reports whether the pointer moved past the last question.
func (s Session) Completed(catalog *Catalog) bool {
	return s.Position > catalog.Len()
}

// Answer records optionID for the current question and advances the pointer.
// Options of earlier questions are stale; anything else outside the current
// question is unknown. The receiver is left untouched on error.
func (s *Session) Answer(catalog *Catalog, optionID int64, now time.Time) (bool, error) {
	if s.Completed(catalog) {
		return true, fmt.Errorf("%w: survey already completed", ErrStaleAnswer)
	}

	_, position, ok := catalog.Option(optionID)
	if !ok {
		return false, fmt.Errorf("%w: option=%d", ErrUnknownOption, optionID)
	}
	if position < s.Position {
		return false, fmt.Errorf("%w: option=%d belongs to answered question %d", ErrStaleAnswer, optionID, position)
	}
	if position != s.Position {
		return false, fmt.Errorf("%w: option=%d does not belong to question %d", ErrUnknownOption, optionID, s.Position)
	}

	if s.Answers == nil {
		s.Answers = make(map[int]int64)
	}
	s.Answers[position] = optionID
	s.Position++
	s.UpdatedAt = now

	return s.Completed(catalog), nil
}

func (s Session) Clone() Session {
	copied := s
	copied.Answers = make(map[int]int64, len(s.Answers))
	for k, v := range s.Answers {
		copied.Answers[k] = v
	}
	return copied
}
