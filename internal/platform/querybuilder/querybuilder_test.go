package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestToSQL(t *testing.T) {
	joinedAt := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	type participantRow struct {
		EventID  int64     `db:"event_id"`
		PlayerID int64     `db:"player_id"`
		JoinedAt time.Time `db:"joined_at,omitempty"`
		Note     string    `db:"-"`
		internal int
	}

	tests := []struct {
		name      string
		build     func() (string, []any, error)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select with filters",
			build: Select("id", "name").From("events").
				Where(Eq("active", true), IsNull("deleted_at")).
				OrderBy("date", "id").
				Limit(10).
				ToSQL,
			wantQuery: "SELECT id, name FROM events WHERE active = $1 AND deleted_at IS NULL ORDER BY date, id LIMIT 10",
			wantArgs:  []any{true},
		},
		{
			name: "select grouped join",
			build: Select("e.id", "COUNT(p.id) AS participant_count").
				From("events e LEFT JOIN participants p ON p.event_id = e.id").
				Where(Eq("e.active", true)).
				GroupBy("e.id").
				OrderBy("e.date ASC").
				ToSQL,
			wantQuery: "SELECT e.id, COUNT(p.id) AS participant_count FROM events e LEFT JOIN participants p ON p.event_id = e.id WHERE e.active = $1 GROUP BY e.id ORDER BY e.date ASC",
			wantArgs:  []any{true},
		},
		{
			name:      "select for update",
			build:     Select("id").From("events").Where(Eq("id", int64(7))).Suffix("FOR UPDATE").ToSQL,
			wantQuery: "SELECT id FROM events WHERE id = $1 FOR UPDATE",
			wantArgs:  []any{int64(7)},
		},
		{
			name:      "in list",
			build:     Select("id").From("players").Where(In("id", []int64{3, 5}), Eq("active", true)).ToSQL,
			wantQuery: "SELECT id FROM players WHERE id IN ($1, $2) AND active = $3",
			wantArgs:  []any{int64(3), int64(5), true},
		},
		{
			name:      "empty in list",
			build:     Select("id").From("players").Where(In[int64]("id", nil)).ToSQL,
			wantQuery: "SELECT id FROM players WHERE FALSE",
		},
		{
			name: "multi row insert",
			build: InsertInto("answers").
				Columns("player_id", "question_id", "option_id").
				Values(int64(1), int64(10), int64(101)).
				Values(int64(1), int64(20), int64(202)).
				ToSQL,
			wantQuery: "INSERT INTO answers (player_id, question_id, option_id) VALUES ($1, $2, $3), ($4, $5, $6)",
			wantArgs:  []any{int64(1), int64(10), int64(101), int64(1), int64(20), int64(202)},
		},
		{
			name: "insert model",
			build: func() (string, []any, error) {
				return InsertModel("participants", &participantRow{EventID: 3, PlayerID: 9, JoinedAt: joinedAt, Note: "x"}, "RETURNING id")
			},
			wantQuery: "INSERT INTO participants (event_id, player_id, joined_at) VALUES ($1, $2, $3) RETURNING id",
			wantArgs:  []any{int64(3), int64(9), joinedAt},
		},
		{
			name: "update",
			build: Update("players").
				Set("skill_value", 12).
				SetExpr("updated_at", "NOW()").
				Where(Eq("id", int64(4))).
				ToSQL,
			wantQuery: "UPDATE players SET skill_value = $1, updated_at = NOW() WHERE id = $2",
			wantArgs:  []any{12, int64(4)},
		},
		{
			name:      "delete",
			build:     DeleteFrom("survey_sessions").Where(Eq("player_identity", int64(77))).ToSQL,
			wantQuery: "DELETE FROM survey_sessions WHERE player_identity = $1",
			wantArgs:  []any{int64(77)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if query != tt.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tt.wantQuery, query)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Fatalf("unexpected args: want %v got %v", tt.wantArgs, args)
			}
		})
	}
}

func TestToSQL_Errors(t *testing.T) {
	tests := map[string]func() (string, []any, error){
		"select without table":   Select("id").ToSQL,
		"select without columns": Select().From("events").ToSQL,
		"insert without rows":    InsertInto("events").Columns("name").ToSQL,
		"insert row mismatch":    InsertInto("events").Columns("name", "capacity").Values("Tuesday").ToSQL,
		"update without set":     Update("players").Where(Eq("id", 1)).ToSQL,
		"delete without where":   DeleteFrom("answers").ToSQL,
		"nil model": func() (string, []any, error) {
			var model *struct {
				ID int64 `db:"id"`
			}
			return InsertModel("events", model, "")
		},
		"non struct model": func() (string, []any, error) { return InsertModel("events", 5, "") },
		"untagged model": func() (string, []any, error) {
			return InsertModel("events", struct{ Name string }{Name: "x"}, "")
		},
	}

	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
