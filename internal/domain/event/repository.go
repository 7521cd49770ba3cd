package event

import (
	"context"
	"time"
)

// Repository describes event and roster persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, e Event) (Event, error)
	GetByID(ctx context.Context, eventID int64) (Event, bool, error)
	ListActive(ctx context.Context) ([]Summary, error)
	CountParticipants(ctx context.Context, eventID int64) (int, error)
	// Join checks duplicates and capacity and inserts the participant as one
	// atomic unit per event. Returns ErrNotFound, ErrAlreadyJoined or ErrFull.
	Join(ctx context.Context, eventID, playerID int64, joinedAt time.Time) (Participant, error)
	// ListEntries returns participants with player snapshots in join order.
	ListEntries(ctx context.Context, eventID int64) ([]Entry, error)
}
