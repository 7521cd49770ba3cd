package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
)

type eventTableModel struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Capacity    int            `db:"capacity"`
	Date        time.Time      `db:"date"`
	Location    sql.NullString `db:"location"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
}

type eventSummaryRow struct {
	eventTableModel
	ParticipantCount int `db:"participant_count"`
}

type eventInsertModel struct {
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Capacity    int            `db:"capacity"`
	Date        time.Time      `db:"date"`
	Location    sql.NullString `db:"location"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
}

type participantTableModel struct {
	ID       int64     `db:"id"`
	EventID  int64     `db:"event_id"`
	PlayerID int64     `db:"player_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type participantInsertModel struct {
	EventID  int64     `db:"event_id"`
	PlayerID int64     `db:"player_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type entryRow struct {
	ParticipantID int64          `db:"participant_id"`
	EventID       int64          `db:"event_id"`
	JoinedAt      time.Time      `db:"joined_at"`
	PlayerID      int64          `db:"player_id"`
	TelegramID    int64          `db:"telegram_id"`
	Handle        sql.NullString `db:"handle"`
	SkillValue    int            `db:"skill_value"`
	Active        bool           `db:"active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

const (
	eventColumns       = "id, name, description, capacity, date, location, active, created_at"
	participantColumns = "id, event_id, player_id, joined_at"
)

func eventFromRow(row eventTableModel) event.Event {
	return event.Event{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Capacity:    row.Capacity,
		Date:        row.Date,
		Location:    row.Location.String,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	}
}

func participantFromRow(row participantTableModel) event.Participant {
	return event.Participant{
		ID:       row.ID,
		EventID:  row.EventID,
		PlayerID: row.PlayerID,
		JoinedAt: row.JoinedAt,
	}
}

func entryFromRow(row entryRow) event.Entry {
	return event.Entry{
		Participant: event.Participant{
			ID:       row.ParticipantID,
			EventID:  row.EventID,
			PlayerID: row.PlayerID,
			JoinedAt: row.JoinedAt,
		},
		Player: playerFromRow(playerTableModel{
			ID:         row.PlayerID,
			TelegramID: row.TelegramID,
			Handle:     row.Handle,
			SkillValue: row.SkillValue,
			Active:     row.Active,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		}),
	}
}
