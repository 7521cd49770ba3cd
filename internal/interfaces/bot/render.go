package bot

import (
	"errors"
	"strconv"
	"strings"

	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/domain/event"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	usageEventCreate  = "/event_create <name> <description> <limit> [YYYY-MM-DD[THH:MM]] [location]"
	usageEventJoin    = "/event_join <event_id>"
	usageEventRoster  = "/event_roster <event_id>"
	usageBalanceTeams = "/balance_teams <event_id> [teams]"

	textWelcome           = "Welcome to the Volleyball Bot!\nType /register to join our community!"
	textSurveyDone        = "Thank you for completing the survey!"
	textAlreadyRegistered = "You are already registered! Use /retake to answer the survey again."
	textNotRegistered     = "You haven't registered yet. Use /register to join!"
	textNoSession         = "You have no survey in progress. Use /retake to start it again."
	textStaleAnswer       = "That question was already answered."
	textUnknownOption     = "That option does not belong to the current question."
	textUnauthorized      = "You are not authorized to use this command."
	textEventNotFound     = "Event not found."
	textAlreadyJoined     = "You are already participating in this event."
	textEventFull         = "This event is full."
	textJoined            = "You have successfully joined the event!"
	textNoEvents          = "No events found."
	textEmptyRoster       = "Nobody has joined this event yet."
	textTryAgain          = "Something went wrong. Please try again in a moment."
	textUnknownCommand    = "Unknown command. Try /register, /mydata or /event_list."
)

// questionMessage renders a survey question with one button per option.
func questionMessage(chatID int64, step usecase.SurveyStep) telegram.OutgoingMessage {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Question ")
	_, _ = buf.WriteString(strconv.Itoa(step.Position))
	_, _ = buf.WriteString("/")
	_, _ = buf.WriteString(strconv.Itoa(step.Total))
	_, _ = buf.WriteString("\n")
	_, _ = buf.WriteString(step.Question.Text)

	rows := make([][]telegram.InlineKeyboardButton, 0, len(step.Question.Options))
	for _, opt := range step.Question.Options {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         opt.Text,
			CallbackData: optionCallbackData(opt.ID),
		}})
	}

	return telegram.OutgoingMessage{
		ChatID:      chatID,
		Text:        buf.String(),
		ReplyMarkup: &telegram.InlineKeyboardMarkup{InlineKeyboard: rows},
	}
}

func stepMessage(chatID int64, step usecase.SurveyStep) telegram.OutgoingMessage {
	if step.Completed {
		return telegram.OutgoingMessage{ChatID: chatID, Text: completionText(step)}
	}
	return questionMessage(chatID, step)
}

func completionText(step usecase.SurveyStep) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(textSurveyDone)
	_, _ = buf.WriteString("\nYour skill value: ")
	_, _ = buf.WriteString(strconv.Itoa(step.SkillValue))
	return buf.String()
}

func profileText(profile usecase.PlayerProfile) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Telegram Handle: ")
	_, _ = buf.WriteString(profile.Player.DisplayName())
	_, _ = buf.WriteString("\nSkill value: ")
	_, _ = buf.WriteString(strconv.Itoa(profile.Player.SkillValue))
	_, _ = buf.WriteString("\nRegistered: ")
	_, _ = buf.WriteString(profile.Player.CreatedAt.UTC().Format("2006-01-02"))
	if profile.SurveyPending {
		_, _ = buf.WriteString("\nSurvey in progress at question ")
		_, _ = buf.WriteString(strconv.Itoa(profile.SurveyPosition))
		_, _ = buf.WriteString(". Use /survey to continue.")
	}
	return buf.String()
}

func eventCreatedText(item event.Event) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Event '")
	_, _ = buf.WriteString(item.Name)
	_, _ = buf.WriteString("' created successfully (ID: ")
	_, _ = buf.WriteString(strconv.FormatInt(item.ID, 10))
	_, _ = buf.WriteString(").")
	return buf.String()
}

func eventListText(items []event.Summary) string {
	if len(items) == 0 {
		return textNoEvents
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Available Events:")
	for _, item := range items {
		_, _ = buf.WriteString("\n- ")
		_, _ = buf.WriteString(item.Event.Name)
		_, _ = buf.WriteString(" (ID: ")
		_, _ = buf.WriteString(strconv.FormatInt(item.Event.ID, 10))
		_, _ = buf.WriteString(") ")
		_, _ = buf.WriteString(item.Event.Date.UTC().Format("2006-01-02 15:04"))
		if item.Event.Location != "" {
			_, _ = buf.WriteString(" @ ")
			_, _ = buf.WriteString(item.Event.Location)
		}
		_, _ = buf.WriteString(" [")
		_, _ = buf.WriteString(strconv.Itoa(item.ParticipantCount))
		_, _ = buf.WriteString("/")
		_, _ = buf.WriteString(strconv.Itoa(item.Event.Capacity))
		_, _ = buf.WriteString("]")
	}
	return buf.String()
}

func rosterText(summary event.Summary, entries []event.Entry) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(summary.Event.Name)
	_, _ = buf.WriteString(" roster (")
	_, _ = buf.WriteString(strconv.Itoa(len(entries)))
	_, _ = buf.WriteString("/")
	_, _ = buf.WriteString(strconv.Itoa(summary.Event.Capacity))
	_, _ = buf.WriteString("):")
	if len(entries) == 0 {
		_, _ = buf.WriteString("\n")
		_, _ = buf.WriteString(textEmptyRoster)
		return buf.String()
	}
	for i, entry := range entries {
		_, _ = buf.WriteString("\n")
		_, _ = buf.WriteString(strconv.Itoa(i + 1))
		_, _ = buf.WriteString(". ")
		_, _ = buf.WriteString(entry.Player.DisplayName())
	}
	return buf.String()
}

func teamsText(balance usecase.TeamBalance) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Balanced Teams:")
	for _, t := range balance.Teams {
		_, _ = buf.WriteString("\nTeam ")
		_, _ = buf.WriteString(strconv.Itoa(t.Number))
		_, _ = buf.WriteString(" (skill ")
		_, _ = buf.WriteString(strconv.Itoa(t.SkillSum))
		_, _ = buf.WriteString("):")
		for _, m := range t.Members {
			_, _ = buf.WriteString("\n  - ")
			_, _ = buf.WriteString(m.Handle)
		}
	}
	_, _ = buf.WriteString("\nSpread: ")
	_, _ = buf.WriteString(strconv.Itoa(balance.Spread))
	return buf.String()
}

// errorText maps a usecase failure to the reply shown to the player.
// Unknown and dependency failures get a generic retry message.
func errorText(err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return textTryAgain
	case errors.Is(err, usecase.ErrAlreadyRegistered):
		return textAlreadyRegistered
	case errors.Is(err, usecase.ErrPlayerNotFound):
		return textNotRegistered
	case errors.Is(err, usecase.ErrNoActiveSession):
		return textNoSession
	case errors.Is(err, usecase.ErrStaleAnswer):
		return textStaleAnswer
	case errors.Is(err, usecase.ErrUnknownOption):
		return textUnknownOption
	case errors.Is(err, usecase.ErrUnauthorized):
		return textUnauthorized
	case errors.Is(err, usecase.ErrEventNotFound):
		return textEventNotFound
	case errors.Is(err, usecase.ErrAlreadyJoined):
		return textAlreadyJoined
	case errors.Is(err, usecase.ErrEventFull):
		return textEventFull
	case errors.Is(err, usecase.ErrInsufficientPlayers):
		return "Not enough players to form the requested teams."
	case errors.Is(err, usecase.ErrInvalidInput):
		return "Invalid input: " + invalidInputDetail(err)
	default:
		return textTryAgain
	}
}

func invalidInputDetail(err error) string {
	return strings.TrimPrefix(err.Error(), usecase.ErrInvalidInput.Error()+": ")
}
