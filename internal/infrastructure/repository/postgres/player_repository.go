package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	qb "github.com/riskibarqy/volleyball-bot/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create relies on the unique telegram_id constraint so concurrent
// registrations of one identity yield exactly one row.
func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (player.Player, error) {
	insertModel := playerInsertModel{
		TelegramID: p.Identity,
		Handle:     nullString(p.Handle),
		SkillValue: p.SkillValue,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	query, args, err := qb.InsertModel("players", insertModel, "ON CONFLICT (telegram_id) DO NOTHING RETURNING "+playerColumns)
	if err != nil {
		return player.Player{}, fmt.Errorf("build create player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) || isUniqueViolation(err) {
			return player.Player{}, fmt.Errorf("%w: identity=%d", player.ErrAlreadyExists, p.Identity)
		}
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	return playerFromRow(row), nil
}

// Delete cascades to answers and participants through the foreign keys.
func (r *PlayerRepository) Delete(ctx context.Context, playerID int64) error {
	query, args, err := qb.DeleteFrom("players").Where(qb.Eq("id", playerID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) GetByIdentity(ctx context.Context, identity int64) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("telegram_id", identity), "get player by identity")
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("id", playerID), "get player by id")
}

func (r *PlayerRepository) getOne(ctx context.Context, cond qb.Condition, op string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns).From("players").Where(cond).ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("%s: %w", op, err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) CompleteSurvey(ctx context.Context, playerID int64, answers []player.Answer, skillValue int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx complete survey: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updateQuery, updateArgs, err := qb.Update("players").
		Set("skill_value", skillValue).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update skill value query: %w", err)
	}
	result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return fmt.Errorf("update skill value: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update skill value: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: player=%d", player.ErrNotFound, playerID)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("answers").Where(qb.Eq("player_id", playerID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete answers query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}

	if len(answers) > 0 {
		insert := qb.InsertInto("answers").Columns("player_id", "question_id", "option_id")
		for _, a := range answers {
			insert.Values(playerID, a.QuestionID, a.OptionID)
		}
		insertQuery, insertArgs, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert answers query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete survey tx: %w", err)
	}

	return nil
}
