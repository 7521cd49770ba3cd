package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
)

type playerTableModel struct {
	ID         int64          `db:"id"`
	TelegramID int64          `db:"telegram_id"`
	Handle     sql.NullString `db:"handle"`
	SkillValue int            `db:"skill_value"`
	Active     bool           `db:"active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type playerInsertModel struct {
	TelegramID int64          `db:"telegram_id"`
	Handle     sql.NullString `db:"handle"`
	SkillValue int            `db:"skill_value"`
	Active     bool           `db:"active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

const playerColumns = "id, telegram_id, handle, skill_value, active, created_at, updated_at"

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:         row.ID,
		Identity:   row.TelegramID,
		Handle:     row.Handle.String,
		SkillValue: row.SkillValue,
		Active:     row.Active,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
