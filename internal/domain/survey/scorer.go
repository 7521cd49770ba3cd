package survey

import "sort"

// ChosenAnswer pairs a question with the option picked for it.
type ChosenAnswer struct {
	QuestionID int64
	OptionID   int64
	Points     int
}

// Score sums the points of every chosen option. Unanswered questions and
// options unknown to the catalog contribute 0.
func Score(catalog *Catalog, answers map[int]int64) int {
	total := 0
	for _, chosen := range Resolve(catalog, answers) {
		total += chosen.Points
	}
	return total
}

// Resolve maps position->option answers to catalog entries in question order.
func Resolve(catalog *Catalog, answers map[int]int64) []ChosenAnswer {
	positions := make([]int, 0, len(answers))
	for position := range answers {
		positions = append(positions, position)
	}
	sort.Ints(positions)

	out := make([]ChosenAnswer, 0, len(positions))
	for _, position := range positions {
		option, optionPosition, ok := catalog.Option(answers[position])
		if !ok || optionPosition != position {
			continue
		}
		out = append(out, ChosenAnswer{
			QuestionID: option.QuestionID,
			OptionID:   option.ID,
			Points:     option.Points,
		})
	}
	return out
}
