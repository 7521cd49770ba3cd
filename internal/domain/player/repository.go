package player

import "context"

// Answer is one chosen option for a survey question, persisted on completion.
type Answer struct {
	QuestionID int64
	OptionID   int64
}

// Repository describes player persistence needs from use cases.
type Repository interface {
	// Create inserts a new player. Returns ErrAlreadyExists when the identity is taken.
	Create(ctx context.Context, p Player) (Player, error)
	// Delete removes a player and its answers. Deleting a missing player is not an error.
	Delete(ctx context.Context, playerID int64) error
	GetByIdentity(ctx context.Context, identity int64) (Player, bool, error)
	GetByID(ctx context.Context, playerID int64) (Player, bool, error)
	// CompleteSurvey replaces the stored answers and skill value in one unit.
	CompleteSurvey(ctx context.Context, playerID int64, answers []Answer, skillValue int) error
}
