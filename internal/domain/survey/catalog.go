package survey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidCatalog = errors.New("invalid survey catalog")

// Question is one survey step. Weight is stored but not applied when scoring.
type Question struct {
	ID       int64
	Position int
	Text     string
	Weight   int
	Options  []Option
}

// Option is a scored answer belonging to exactly one question.
type Option struct {
	ID         int64
	QuestionID int64
	Text       string
	Points     int
}

type optionRef struct {
	option   Option
	position int
}

// Catalog is the ordered, read-only set of survey questions.
type Catalog struct {
	questions []Question
	options   map[int64]optionRef
}

// NewCatalog validates and freezes the given questions. Positions must run 1..N
// without gaps and option ids must be unique across the catalog.
func NewCatalog(questions []Question) (*Catalog, error) {
	sorted := make([]Question, 0, len(questions))
	for _, q := range questions {
		copied := q
		copied.Options = append([]Option(nil), q.Options...)
		sorted = append(sorted, copied)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	options := make(map[int64]optionRef)
	for i, q := range sorted {
		if q.Position != i+1 {
			return nil, fmt.Errorf("%w: expected question position %d, got %d", ErrInvalidCatalog, i+1, q.Position)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", ErrInvalidCatalog, q.Position)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %d has no options", ErrInvalidCatalog, q.Position)
		}
		for _, opt := range q.Options {
			if opt.ID <= 0 {
				return nil, fmt.Errorf("%w: question %d has option without id", ErrInvalidCatalog, q.Position)
			}
			if opt.QuestionID != q.ID {
				return nil, fmt.Errorf("%w: option %d does not belong to question %d", ErrInvalidCatalog, opt.ID, q.ID)
			}
			if _, exists := options[opt.ID]; exists {
				return nil, fmt.Errorf("%w: duplicate option id %d", ErrInvalidCatalog, opt.ID)
			}
			options[opt.ID] = optionRef{option: opt, position: q.Position}
		}
	}

	return &Catalog{questions: sorted, options: options}, nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.questions)
}

// QuestionAt returns the question at a 1-based position.
func (c *Catalog) QuestionAt(position int) (Question, bool) {
	if c == nil || position < 1 || position > len(c.questions) {
		return Question{}, false
	}
	return cloneQuestion(c.questions[position-1]), true
}

// Option resolves an option id to the option and the position of its question.
func (c *Catalog) Option(optionID int64) (Option, int, bool) {
	if c == nil {
		return Option{}, 0, false
	}
	ref, ok := c.options[optionID]
	if !ok {
		return Option{}, 0, false
	}
	return ref.option, ref.position, true
}

func (c *Catalog) Questions() []Question {
	if c == nil {
		return nil
	}
	out := make([]Question, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, cloneQuestion(q))
	}
	return out
}

func cloneQuestion(q Question) Question {
	copied := q
	copied.Options = append([]Option(nil), q.Options...)
	return copied
}
