package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if !isNotFound(fmt.Errorf("get player: %w", sql.ErrNoRows)) {
		t.Fatalf("expected true for wrapped sql.ErrNoRows")
	}
	if isNotFound(fakeErr("pq: relation players does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert participant: %w", &pq.Error{Code: "23505", Constraint: "participants_event_id_player_id_key"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for 23505")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(fakeErr("duplicate key value violates unique constraint")) {
			t.Fatalf("expected false for non pq error")
		}
	})
}

func TestNullString(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Fatalf("expected invalid null string for empty value")
	}
	if got := nullString("Gym 2"); !got.Valid || got.String != "Gym 2" {
		t.Fatalf("unexpected null string: %+v", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
