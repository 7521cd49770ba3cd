package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("player not found")
	ErrAlreadyExists = errors.New("player already exists")
)

// Player is a registered volleyball community member.
type Player struct {
	ID         int64
	Identity   int64
	Handle     string
	SkillValue int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Player) Validate() error {
	if p.Identity <= 0 {
		return fmt.Errorf("player identity must be greater than zero")
	}
	if len(strings.TrimSpace(p.Handle)) > 100 {
		return fmt.Errorf("player handle must be at most 100 characters")
	}

	return nil
}

// DisplayName falls back to the identity when the handle is empty.
func (p Player) DisplayName() string {
	if handle := strings.TrimSpace(p.Handle); handle != "" {
		return handle
	}
	return fmt.Sprintf("player-%d", p.Identity)
}
