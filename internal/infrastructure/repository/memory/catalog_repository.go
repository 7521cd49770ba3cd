package memory

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
)

type CatalogRepository struct {
	catalog *survey.Catalog
}

func NewCatalogRepository(questions []survey.Question) (*CatalogRepository, error) {
	catalog, err := survey.NewCatalog(questions)
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{catalog: catalog}, nil
}

func (r *CatalogRepository) LoadCatalog(_ context.Context) (*survey.Catalog, error) {
	return r.catalog, nil
}

type catalogFile struct {
	Questions []catalogFileQuestion `json:"questions"`
}

type catalogFileQuestion struct {
	Text    string              `json:"question_text"`
	Weight  *int                `json:"question_weight"`
	Options []catalogFileOption `json:"options"`
}

type catalogFileOption struct {
	Text   string `json:"option_text"`
	Points int    `json:"response_points"`
}

// LoadQuestionsFile reads a questionnaire JSON file. Questions keep file
// order; ids are assigned sequentially.
func LoadQuestionsFile(path string) ([]survey.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	return ParseQuestions(raw)
}

func ParseQuestions(raw []byte) ([]survey.Question, error) {
	var file catalogFile
	if err := sonic.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %v", survey.ErrInvalidCatalog, err)
	}

	items := make([]seedQuestion, 0, len(file.Questions))
	for _, q := range file.Questions {
		weight := 1
		if q.Weight != nil {
			weight = *q.Weight
		}
		item := seedQuestion{text: q.Text, weight: weight}
		for _, opt := range q.Options {
			item.options = append(item.options, seedOption{text: opt.Text, points: opt.Points})
		}
		items = append(items, item)
	}

	return buildQuestions(items), nil
}
