package memory

import "github.com/riskibarqy/volleyball-bot/internal/domain/survey"

// SeedQuestions is the default volleyball questionnaire.
func SeedQuestions() []survey.Question {
	return buildQuestions([]seedQuestion{
		{
			text:   "How long have you been playing volleyball?",
			weight: 1,
			options: []seedOption{
				{"Just starting out", 1},
				{"1-2 years", 2},
				{"3-5 years", 3},
				{"More than 5 years", 4},
			},
		},
		{
			text:   "How often do you play?",
			weight: 1,
			options: []seedOption{
				{"A few times a year", 1},
				{"Monthly", 2},
				{"Weekly", 3},
				{"Several times a week", 4},
			},
		},
		{
			text:   "How would you describe your serve?",
			weight: 2,
			options: []seedOption{
				{"Underhand, sometimes misses", 1},
				{"Underhand, consistent", 2},
				{"Overhand float", 3},
				{"Jump serve", 4},
			},
		},
		{
			text:   "How comfortable are you receiving and passing?",
			weight: 2,
			options: []seedOption{
				{"I avoid the ball", 1},
				{"I can bump easy balls", 2},
				{"I pass most serves to the setter", 3},
				{"I handle hard serves and digs", 4},
			},
		},
		{
			text:   "Can you set and attack?",
			weight: 2,
			options: []seedOption{
				{"Not yet", 1},
				{"I can set a playable ball", 2},
				{"I attack from a good set", 3},
				{"I set and attack in rotation", 4},
			},
		},
		{
			text:   "Have you played in organized games?",
			weight: 1,
			options: []seedOption{
				{"Never", 1},
				{"Casual pickup games", 2},
				{"Amateur league", 3},
				{"Club or school team", 4},
			},
		},
	})
}

type seedQuestion struct {
	text    string
	weight  int
	options []seedOption
}

type seedOption struct {
	text   string
	points int
}

func buildQuestions(items []seedQuestion) []survey.Question {
	out := make([]survey.Question, 0, len(items))
	var optionID int64
	for i, item := range items {
		questionID := int64(i + 1)
		q := survey.Question{
			ID:       questionID,
			Position: i + 1,
			Text:     item.text,
			Weight:   item.weight,
			Options:  make([]survey.Option, 0, len(item.options)),
		}
		for _, opt := range item.options {
			optionID++
			q.Options = append(q.Options, survey.Option{
				ID:         optionID,
				QuestionID: questionID,
				Text:       opt.text,
				Points:     opt.points,
			})
		}
		out = append(out, q)
	}
	return out
}
