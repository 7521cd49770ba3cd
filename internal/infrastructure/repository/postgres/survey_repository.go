package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	qb "github.com/riskibarqy/volleyball-bot/internal/platform/querybuilder"
)

type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) LoadCatalog(ctx context.Context) (*survey.Catalog, error) {
	questionsQuery, questionsArgs, err := qb.Select("id", "position", "text", "weight").
		From("questions").
		OrderBy("position ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list questions query: %w", err)
	}
	var questions []questionTableModel
	if err := r.db.SelectContext(ctx, &questions, questionsQuery, questionsArgs...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	optionsQuery, optionsArgs, err := qb.Select("id", "question_id", "text", "points").
		From("options").
		OrderBy("question_id ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list options query: %w", err)
	}
	var options []optionTableModel
	if err := r.db.SelectContext(ctx, &options, optionsQuery, optionsArgs...); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}

	catalog, err := survey.NewCatalog(questionsFromRows(questions, options))
	if err != nil {
		return nil, fmt.Errorf("build survey catalog: %w", err)
	}
	return catalog, nil
}

// SessionStore persists survey sessions in survey_sessions. Sessions idle
// longer than ttl read as missing and are removed; ttl <= 0 disables expiry.
type SessionStore struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(db *sqlx.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context, identity int64) (survey.Session, bool, error) {
	query, args, err := qb.Select("player_identity", "position", "answers", "started_at", "updated_at").
		From("survey_sessions").
		Where(qb.Eq("player_identity", identity)).
		ToSQL()
	if err != nil {
		return survey.Session{}, false, fmt.Errorf("build get survey session query: %w", err)
	}

	var row surveySessionTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return survey.Session{}, false, nil
		}
		return survey.Session{}, false, fmt.Errorf("get survey session: %w", err)
	}

	if s.ttl > 0 && !row.UpdatedAt.Add(s.ttl).After(s.now()) {
		if err := s.Delete(ctx, identity); err != nil {
			return survey.Session{}, false, err
		}
		return survey.Session{}, false, nil
	}

	answers, err := decodeSessionAnswers(row.Answers)
	if err != nil {
		return survey.Session{}, false, err
	}

	return survey.Session{
		PlayerIdentity: row.PlayerIdentity,
		Position:       row.Position,
		Answers:        answers,
		StartedAt:      row.StartedAt,
		UpdatedAt:      row.UpdatedAt,
	}, true, nil
}

func (s *SessionStore) Save(ctx context.Context, session survey.Session) error {
	answers, err := encodeSessionAnswers(session.Answers)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("survey_sessions").
		Columns("player_identity", "position", "answers", "started_at", "updated_at").
		Values(session.PlayerIdentity, session.Position, string(answers), session.StartedAt, session.UpdatedAt).
		Suffix("ON CONFLICT (player_identity) DO UPDATE SET position = EXCLUDED.position, answers = EXCLUDED.answers, started_at = EXCLUDED.started_at, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save survey session query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save survey session: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, identity int64) error {
	query, args, err := qb.DeleteFrom("survey_sessions").Where(qb.Eq("player_identity", identity)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete survey session query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete survey session: %w", err)
	}

	return nil
}

// Answers are stored as a JSON object keyed by question position.
func encodeSessionAnswers(answers map[int]int64) ([]byte, error) {
	payload := make(map[string]int64, len(answers))
	for position, optionID := range answers {
		payload[strconv.Itoa(position)] = optionID
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode survey session answers: %w", err)
	}
	return raw, nil
}

func decodeSessionAnswers(raw []byte) (map[int]int64, error) {
	out := make(map[int]int64)
	if len(raw) == 0 {
		return out, nil
	}

	var payload map[string]int64
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode survey session answers: %w", err)
	}
	for key, optionID := range payload {
		position, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode survey session answers: invalid position %q", key)
		}
		out[position] = optionID
	}
	return out, nil
}
