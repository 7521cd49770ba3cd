package survey

import (
	"errors"
	"testing"
	"time"
)

func TestSession_AnswersInOrderUntilCompleted(t *testing.T) {
	catalog := testCatalog(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := NewSession(42, now)

	steps := []int64{102, 201, 302}
	for i, optionID := range steps {
		completed, err := session.Answer(catalog, optionID, now.Add(time.Duration(i+1)*time.Minute))
		if err != nil {
			t.Fatalf("answer %d: %v", optionID, err)
		}
		wantCompleted := i == len(steps)-1
		if completed != wantCompleted {
			t.Fatalf("answer %d: expected completed=%v, got %v", optionID, wantCompleted, completed)
		}
		if session.Position != i+2 {
			t.Fatalf("expected position %d, got %d", i+2, session.Position)
		}
	}

	if !session.Completed(catalog) {
		t.Fatalf("expected completed session")
	}
	if !session.UpdatedAt.Equal(now.Add(3 * time.Minute)) {
		t.Fatalf("unexpected updated at: %s", session.UpdatedAt)
	}
	if Score(catalog, session.Answers) != 5+1+4 {
		t.Fatalf("unexpected score: %d", Score(catalog, session.Answers))
	}
}

func TestSession_RejectsOptionsOutsideCurrentQuestion(t *testing.T) {
	catalog := testCatalog(t)
	now := time.Now()
	session := NewSession(7, now)

	if _, err := session.Answer(catalog, 101, now); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	tests := []struct {
		name     string
		optionID int64
		want     error
	}{
		{name: "earlier question", optionID: 102, want: ErrStaleAnswer},
		{name: "later question", optionID: 302, want: ErrUnknownOption},
		{name: "not in catalog", optionID: 999, want: ErrUnknownOption},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := session.Clone()
			_, err := session.Answer(catalog, tc.optionID, now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if session.Position != before.Position || len(session.Answers) != len(before.Answers) {
				t.Fatalf("session changed on rejected answer: before=%+v after=%+v", before, session)
			}
		})
	}
}

func TestSession_AnswerAfterCompletionIsStale(t *testing.T) {
	catalog := testCatalog(t)
	session := NewSession(7, time.Now())
	for _, optionID := range []int64{101, 201, 301} {
		if _, err := session.Answer(catalog, optionID, time.Now()); err != nil {
			t.Fatalf("answer %d: %v", optionID, err)
		}
	}

	if _, err := session.Answer(catalog, 301, time.Now()); !errors.Is(err, ErrStaleAnswer) {
		t.Fatalf("expected ErrStaleAnswer, got %v", err)
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	session := NewSession(1, time.Now())
	session.Answers[1] = 101

	copied := session.Clone()
	copied.Answers[2] = 201

	if _, ok := session.Answers[2]; ok {
		t.Fatalf("clone shares answers map with original")
	}
}
