package postgres

import (
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
)

type questionTableModel struct {
	ID       int64  `db:"id"`
	Position int    `db:"position"`
	Text     string `db:"text"`
	Weight   int    `db:"weight"`
}

type optionTableModel struct {
	ID         int64  `db:"id"`
	QuestionID int64  `db:"question_id"`
	Text       string `db:"text"`
	Points     int    `db:"points"`
}

type surveySessionTableModel struct {
	PlayerIdentity int64     `db:"player_identity"`
	Position       int       `db:"position"`
	Answers        []byte    `db:"answers"`
	StartedAt      time.Time `db:"started_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func questionsFromRows(questions []questionTableModel, options []optionTableModel) []survey.Question {
	byQuestion := make(map[int64][]survey.Option, len(questions))
	for _, row := range options {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], survey.Option{
			ID:         row.ID,
			QuestionID: row.QuestionID,
			Text:       row.Text,
			Points:     row.Points,
		})
	}

	out := make([]survey.Question, 0, len(questions))
	for _, row := range questions {
		out = append(out, survey.Question{
			ID:       row.ID,
			Position: row.Position,
			Text:     row.Text,
			Weight:   row.Weight,
			Options:  byQuestion[row.ID],
		})
	}
	return out
}
