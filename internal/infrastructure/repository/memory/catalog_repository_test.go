package memory

import (
	"errors"
	"testing"

	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
)

func TestSeedQuestionsBuildValidCatalog(t *testing.T) {
	repo, err := NewCatalogRepository(SeedQuestions())
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	catalog, _ := repo.LoadCatalog(t.Context())
	if catalog.Len() != 6 {
		t.Fatalf("expected 6 seeded questions, got %d", catalog.Len())
	}
}

func TestParseQuestions(t *testing.T) {
	raw := []byte(`{
		"questions": [
			{"question_text": "Years played?", "question_weight": 2, "options": [
				{"option_text": "None", "response_points": 0},
				{"option_text": "Many", "response_points": 5}
			]},
			{"question_text": "Serve?", "options": [
				{"option_text": "Yes", "response_points": 3}
			]}
		]
	}`)

	questions, err := ParseQuestions(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	catalog, err := survey.NewCatalog(questions)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	second, _ := catalog.QuestionAt(2)
	if second.Weight != 1 {
		t.Fatalf("expected default weight 1, got %d", second.Weight)
	}
	opt, position, ok := catalog.Option(3)
	if !ok || position != 2 || opt.Points != 3 {
		t.Fatalf("unexpected option 3: %+v position=%d ok=%v", opt, position, ok)
	}
}

func TestParseQuestions_InvalidJSON(t *testing.T) {
	if _, err := ParseQuestions([]byte(`{"questions": [`)); !errors.Is(err, survey.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}
