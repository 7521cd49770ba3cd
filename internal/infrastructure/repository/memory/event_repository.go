package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
)

type playerLookup interface {
	GetByID(ctx context.Context, playerID int64) (player.Player, bool, error)
}

// EventRepository keeps events and rosters in memory. One mutex guards all
// rosters so a join's duplicate check, capacity check and insert are a unit.
type EventRepository struct {
	mu                sync.RWMutex
	players           playerLookup
	nextEventID       int64
	nextParticipantID int64
	items             map[int64]event.Event
	orders            []int64
	participants      map[int64][]event.Participant
}

func NewEventRepository(players playerLookup) *EventRepository {
	return &EventRepository{
		players:      players,
		items:        make(map[int64]event.Event),
		participants: make(map[int64][]event.Participant),
	}
}

func (r *EventRepository) Create(_ context.Context, e event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextEventID++
	e.ID = r.nextEventID
	r.items[e.ID] = e
	r.orders = append(r.orders, e.ID)

	return e, nil
}

func (r *EventRepository) GetByID(_ context.Context, eventID int64) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[eventID]
	return e, ok, nil
}

func (r *EventRepository) ListActive(_ context.Context) ([]event.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Summary, 0, len(r.orders))
	for _, id := range r.orders {
		e := r.items[id]
		if !e.Active {
			continue
		}
		out = append(out, event.Summary{Event: e, ParticipantCount: len(r.participants[id])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Event.Date.Before(out[j].Event.Date)
	})

	return out, nil
}

func (r *EventRepository) CountParticipants(_ context.Context, eventID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.participants[eventID]), nil
}

func (r *EventRepository) Join(_ context.Context, eventID, playerID int64, joinedAt time.Time) (event.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[eventID]
	if !ok || !e.Active {
		return event.Participant{}, fmt.Errorf("%w: event=%d", event.ErrNotFound, eventID)
	}

	roster := r.participants[eventID]
	for _, p := range roster {
		if p.PlayerID == playerID {
			return event.Participant{}, fmt.Errorf("%w: event=%d player=%d", event.ErrAlreadyJoined, eventID, playerID)
		}
	}
	if len(roster) >= e.Capacity {
		return event.Participant{}, fmt.Errorf("%w: event=%d capacity=%d", event.ErrFull, eventID, e.Capacity)
	}

	r.nextParticipantID++
	participant := event.Participant{
		ID:       r.nextParticipantID,
		EventID:  eventID,
		PlayerID: playerID,
		JoinedAt: joinedAt,
	}
	r.participants[eventID] = append(roster, participant)

	return participant, nil
}

func (r *EventRepository) ListEntries(ctx context.Context, eventID int64) ([]event.Entry, error) {
	r.mu.RLock()
	roster := append([]event.Participant(nil), r.participants[eventID]...)
	r.mu.RUnlock()

	out := make([]event.Entry, 0, len(roster))
	for _, p := range roster {
		snapshot, exists, err := r.players.GetByID(ctx, p.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("get participant player=%d: %w", p.PlayerID, err)
		}
		if !exists {
			continue
		}
		out = append(out, event.Entry{Participant: p, Player: snapshot})
	}

	return out, nil
}
