package bot

import (
	"context"
	"fmt"

	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

const (
	cmdStart        = "start"
	cmdRegister     = "register"
	cmdSurvey       = "survey"
	cmdRetake       = "retake"
	cmdEditMyData   = "edit_my_data"
	cmdMyData       = "mydata"
	cmdEventCreate  = "event_create"
	cmdEventJoin    = "event_join"
	cmdEventList    = "event_list"
	cmdEventRoster  = "event_roster"
	cmdBalanceTeams = "balance_teams"
)

var knownCommands = map[string]struct{}{
	cmdStart: {}, cmdRegister: {}, cmdSurvey: {}, cmdRetake: {}, cmdEditMyData: {}, cmdMyData: {},
	cmdEventCreate: {}, cmdEventJoin: {}, cmdEventList: {}, cmdEventRoster: {}, cmdBalanceTeams: {},
}

// commandLabel keeps metric label values bounded to known commands.
func commandLabel(name string) string {
	if _, ok := knownCommands[name]; ok {
		return name
	}
	return "unknown"
}

func (b *Bot) runCommand(ctx context.Context, caller telegram.User, chatID int64, cmd command) (telegram.OutgoingMessage, error) {
	text := func(s string) telegram.OutgoingMessage {
		return telegram.OutgoingMessage{ChatID: chatID, Text: s}
	}

	switch cmd.Name {
	case cmdStart:
		return text(textWelcome), nil

	case cmdRegister:
		step, err := b.services.Registration.Begin(ctx, caller.ID, caller.Handle())
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		if step.Completed {
			b.metrics.SurveyCompleted()
		}
		return stepMessage(chatID, step), nil

	case cmdSurvey:
		step, err := b.services.Registration.CurrentQuestion(ctx, caller.ID)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return stepMessage(chatID, step), nil

	case cmdRetake, cmdEditMyData:
		step, err := b.services.Registration.Retake(ctx, caller.ID)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		if step.Completed {
			b.metrics.SurveyCompleted()
		}
		return stepMessage(chatID, step), nil

	case cmdMyData:
		profile, err := b.services.Players.Profile(ctx, caller.ID)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return text(profileText(profile)), nil

	case cmdEventCreate:
		if !b.admins.IsAdmin(caller.ID) {
			return telegram.OutgoingMessage{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, cmd.Name)
		}
		input, err := parseCreateEvent(cmd.Args, b.location)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		created, err := b.services.Events.Create(ctx, caller.ID, input)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return text(eventCreatedText(created)), nil

	case cmdEventJoin:
		eventID, err := parseEventID(cmd.Args, usageEventJoin)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		_, err = b.services.Events.Join(ctx, eventID, caller.ID)
		b.metrics.EventJoin(outcomeOf(err))
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return text(textJoined), nil

	case cmdEventList:
		items, err := b.services.Events.ListActive(ctx)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return text(eventListText(items)), nil

	case cmdEventRoster:
		eventID, err := parseEventID(cmd.Args, usageEventRoster)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		summary, err := b.services.Events.Get(ctx, eventID)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		entries, err := b.services.Events.Roster(ctx, eventID)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		return text(rosterText(summary, entries)), nil

	case cmdBalanceTeams:
		if !b.admins.IsAdmin(caller.ID) {
			return telegram.OutgoingMessage{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, cmd.Name)
		}
		eventID, teams, err := parseBalanceArgs(cmd.Args)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		balance, err := b.services.Teams.Balance(ctx, caller.ID, eventID, teams)
		if err != nil {
			return telegram.OutgoingMessage{}, err
		}
		b.metrics.TeamsBalanced()
		return text(teamsText(balance)), nil

	default:
		return text(textUnknownCommand), nil
	}
}
