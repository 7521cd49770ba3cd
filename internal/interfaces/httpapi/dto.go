package httpapi

import (
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

type registerPlayerRequest struct {
	Identity int64  `json:"identity" validate:"required,gt=0"`
	Handle   string `json:"handle" validate:"max=100"`
}

type submitAnswerRequest struct {
	OptionID int64 `json:"optionId" validate:"required,gt=0"`
}

type createEventRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	Location    string    `json:"location" validate:"max=200"`
	Capacity    int       `json:"capacity" validate:"required,gt=0"`
	Date        time.Time `json:"date"`
}

type joinEventRequest struct {
	Identity int64 `json:"identity" validate:"required,gt=0"`
}

type balanceTeamsRequest struct {
	Teams int `json:"teams" validate:"gte=0"`
}

type optionDTO struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type questionDTO struct {
	ID      int64       `json:"id"`
	Text    string      `json:"text"`
	Options []optionDTO `json:"options"`
}

type surveyStepDTO struct {
	Position   int          `json:"position,omitempty"`
	Total      int          `json:"total"`
	Completed  bool         `json:"completed"`
	Question   *questionDTO `json:"question,omitempty"`
	SkillValue *int         `json:"skillValue,omitempty"`
}

type playerDTO struct {
	ID         int64     `json:"id"`
	Identity   int64     `json:"identity"`
	Handle     string    `json:"handle"`
	SkillValue int       `json:"skillValue"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type playerProfileDTO struct {
	Player         playerDTO `json:"player"`
	SurveyPending  bool      `json:"surveyPending"`
	SurveyPosition int       `json:"surveyPosition,omitempty"`
}

type eventDTO struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Date             time.Time `json:"date"`
	Capacity         int       `json:"capacity"`
	ParticipantCount int       `json:"participantCount"`
	SpotsLeft        int       `json:"spotsLeft"`
}

type participantDTO struct {
	PlayerID   int64     `json:"playerId"`
	Identity   int64     `json:"identity"`
	Handle     string    `json:"handle"`
	SkillValue int       `json:"skillValue"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type teamMemberDTO struct {
	PlayerID int64  `json:"playerId"`
	Handle   string `json:"handle"`
	Skill    int    `json:"skill"`
}

type teamDTO struct {
	Number   int             `json:"number"`
	SkillSum int             `json:"skillSum"`
	Members  []teamMemberDTO `json:"members"`
}

type teamBalanceDTO struct {
	EventID int64     `json:"eventId"`
	Spread  int       `json:"spread"`
	Teams   []teamDTO `json:"teams"`
}

func toSurveyStepDTO(step usecase.SurveyStep) surveyStepDTO {
	out := surveyStepDTO{
		Total:     step.Total,
		Completed: step.Completed,
	}
	if step.Completed {
		skill := step.SkillValue
		out.SkillValue = &skill
		return out
	}

	options := make([]optionDTO, 0, len(step.Question.Options))
	for _, opt := range step.Question.Options {
		options = append(options, optionDTO{ID: opt.ID, Text: opt.Text})
	}
	out.Position = step.Position
	out.Question = &questionDTO{
		ID:      step.Question.ID,
		Text:    step.Question.Text,
		Options: options,
	}
	return out
}

func toPlayerDTO(item player.Player) playerDTO {
	return playerDTO{
		ID:         item.ID,
		Identity:   item.Identity,
		Handle:     item.Handle,
		SkillValue: item.SkillValue,
		Active:     item.Active,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}

func toEventDTO(summary event.Summary) eventDTO {
	return eventDTO{
		ID:               summary.Event.ID,
		Name:             summary.Event.Name,
		Description:      summary.Event.Description,
		Location:         summary.Event.Location,
		Date:             summary.Event.Date,
		Capacity:         summary.Event.Capacity,
		ParticipantCount: summary.ParticipantCount,
		SpotsLeft:        summary.SpotsLeft(),
	}
}

func toParticipantDTO(entry event.Entry) participantDTO {
	return participantDTO{
		PlayerID:   entry.Player.ID,
		Identity:   entry.Player.Identity,
		Handle:     entry.Player.DisplayName(),
		SkillValue: entry.Player.SkillValue,
		JoinedAt:   entry.Participant.JoinedAt,
	}
}

func toTeamBalanceDTO(balance usecase.TeamBalance) teamBalanceDTO {
	teams := make([]teamDTO, 0, len(balance.Teams))
	for _, t := range balance.Teams {
		members := make([]teamMemberDTO, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, teamMemberDTO{PlayerID: m.PlayerID, Handle: m.Handle, Skill: m.Skill})
		}
		teams = append(teams, teamDTO{Number: t.Number, SkillSum: t.SkillSum, Members: members})
	}
	return teamBalanceDTO{
		EventID: balance.Event.ID,
		Spread:  balance.Spread,
		Teams:   teams,
	}
}
