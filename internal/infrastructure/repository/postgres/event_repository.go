package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	qb "github.com/riskibarqy/volleyball-bot/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e event.Event) (event.Event, error) {
	insertModel := eventInsertModel{
		Name:        e.Name,
		Description: nullString(e.Description),
		Capacity:    e.Capacity,
		Date:        e.Date,
		Location:    nullString(e.Location),
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
	}
	query, args, err := qb.InsertModel("events", insertModel, "RETURNING "+eventColumns)
	if err != nil {
		return event.Event{}, fmt.Errorf("build create event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return event.Event{}, fmt.Errorf("create event: %w", err)
	}

	return eventFromRow(row), nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns).From("events").Where(qb.Eq("id", eventID)).ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event by id query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event by id: %w", err)
	}

	return eventFromRow(row), true, nil
}

func (r *EventRepository) ListActive(ctx context.Context) ([]event.Summary, error) {
	query, args, err := qb.Select(
		"e.id", "e.name", "e.description", "e.capacity", "e.date", "e.location", "e.active", "e.created_at",
		"COUNT(p.id) AS participant_count",
	).
		From("events e LEFT JOIN participants p ON p.event_id = e.id").
		Where(qb.Eq("e.active", true)).
		GroupBy("e.id").
		OrderBy("e.date ASC", "e.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active events query: %w", err)
	}

	var rows []eventSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}

	out := make([]event.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.Summary{Event: eventFromRow(row.eventTableModel), ParticipantCount: row.ParticipantCount})
	}
	return out, nil
}

func (r *EventRepository) CountParticipants(ctx context.Context, eventID int64) (int, error) {
	return countParticipants(ctx, r.db, eventID)
}

// Join locks the event row so concurrent joins of one event serialize on the
// capacity check. The (event_id, player_id) constraint backs the duplicate check.
func (r *EventRepository) Join(ctx context.Context, eventID, playerID int64, joinedAt time.Time) (event.Participant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return event.Participant{}, fmt.Errorf("begin tx join event: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select(eventColumns).From("events").
		Where(qb.Eq("id", eventID)).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		return event.Participant{}, fmt.Errorf("build lock event query: %w", err)
	}
	var locked eventTableModel
	if err := tx.GetContext(ctx, &locked, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return event.Participant{}, fmt.Errorf("%w: event=%d", event.ErrNotFound, eventID)
		}
		return event.Participant{}, fmt.Errorf("lock event: %w", err)
	}
	if !locked.Active {
		return event.Participant{}, fmt.Errorf("%w: event=%d inactive", event.ErrNotFound, eventID)
	}

	existsQuery, existsArgs, err := qb.Select("COUNT(*)").From("participants").
		Where(qb.Eq("event_id", eventID), qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return event.Participant{}, fmt.Errorf("build participant exists query: %w", err)
	}
	var existing int
	if err := tx.GetContext(ctx, &existing, existsQuery, existsArgs...); err != nil {
		return event.Participant{}, fmt.Errorf("check participant exists: %w", err)
	}
	if existing > 0 {
		return event.Participant{}, fmt.Errorf("%w: event=%d player=%d", event.ErrAlreadyJoined, eventID, playerID)
	}

	count, err := countParticipants(ctx, tx, eventID)
	if err != nil {
		return event.Participant{}, err
	}
	if count >= locked.Capacity {
		return event.Participant{}, fmt.Errorf("%w: event=%d capacity=%d", event.ErrFull, eventID, locked.Capacity)
	}

	insertQuery, insertArgs, err := qb.InsertModel("participants", participantInsertModel{
		EventID:  eventID,
		PlayerID: playerID,
		JoinedAt: joinedAt,
	}, "RETURNING "+participantColumns)
	if err != nil {
		return event.Participant{}, fmt.Errorf("build insert participant query: %w", err)
	}
	var row participantTableModel
	if err := tx.GetContext(ctx, &row, insertQuery, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return event.Participant{}, fmt.Errorf("%w: event=%d player=%d", event.ErrAlreadyJoined, eventID, playerID)
		}
		return event.Participant{}, fmt.Errorf("insert participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Participant{}, fmt.Errorf("commit join event tx: %w", err)
	}

	return participantFromRow(row), nil
}

func (r *EventRepository) ListEntries(ctx context.Context, eventID int64) ([]event.Entry, error) {
	query, args, err := qb.Select(
		"pa.id AS participant_id", "pa.event_id", "pa.joined_at",
		"pl.id AS player_id", "pl.telegram_id", "pl.handle", "pl.skill_value", "pl.active", "pl.created_at", "pl.updated_at",
	).
		From("participants pa JOIN players pl ON pl.id = pa.player_id").
		Where(qb.Eq("pa.event_id", eventID)).
		OrderBy("pa.joined_at ASC", "pa.id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list event entries query: %w", err)
	}

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list event entries: %w", err)
	}

	out := make([]event.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out, nil
}

func countParticipants(ctx context.Context, q sqlx.QueryerContext, eventID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("participants").Where(qb.Eq("event_id", eventID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count participants query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}
