package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
)

type PlayerRepository struct {
	mu         sync.RWMutex
	nextID     int64
	items      map[int64]player.Player
	byIdentity map[int64]int64
	answers    map[int64][]player.Answer
	now        func() time.Time
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	r := &PlayerRepository{
		items:      make(map[int64]player.Player, len(players)),
		byIdentity: make(map[int64]int64, len(players)),
		answers:    make(map[int64][]player.Answer),
		now:        time.Now,
	}
	for _, p := range players {
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.items[p.ID] = p
		r.byIdentity[p.Identity] = p.ID
	}

	return r
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) (player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byIdentity[p.Identity]; exists {
		return player.Player{}, fmt.Errorf("%w: identity=%d", player.ErrAlreadyExists, p.Identity)
	}

	r.nextID++
	p.ID = r.nextID
	r.items[p.ID] = p
	r.byIdentity[p.Identity] = p.ID

	return p, nil
}

func (r *PlayerRepository) Delete(_ context.Context, playerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[playerID]
	if !ok {
		return nil
	}
	delete(r.items, playerID)
	delete(r.byIdentity, p.Identity)
	delete(r.answers, playerID)

	return nil
}

func (r *PlayerRepository) GetByIdentity(_ context.Context, identity int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdentity[identity]
	if !ok {
		return player.Player{}, false, nil
	}

	return r.items[id], true, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) CompleteSurvey(_ context.Context, playerID int64, answers []player.Answer, skillValue int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[playerID]
	if !ok {
		return fmt.Errorf("%w: player=%d", player.ErrNotFound, playerID)
	}

	p.SkillValue = skillValue
	p.UpdatedAt = r.now().UTC()
	r.items[playerID] = p
	r.answers[playerID] = append([]player.Answer(nil), answers...)

	return nil
}

// Answers returns the stored answers of a player.
func (r *PlayerRepository) Answers(playerID int64) []player.Answer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]player.Answer(nil), r.answers[playerID]...)
}
