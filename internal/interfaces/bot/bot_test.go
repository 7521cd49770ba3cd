package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	"github.com/riskibarqy/volleyball-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

const testAdmin int64 = 1

type fakeSender struct {
	mu        sync.Mutex
	messages  []telegram.OutgoingMessage
	callbacks []string
	sendErr   error
}

func (s *fakeSender) SendMessage(_ context.Context, msg telegram.OutgoingMessage) (telegram.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return telegram.Message{}, s.sendErr
	}
	s.messages = append(s.messages, msg)
	return telegram.Message{MessageID: int64(len(s.messages)), Chat: telegram.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (s *fakeSender) AnswerCallbackQuery(_ context.Context, callbackID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callbackID)
	return nil
}

func (s *fakeSender) last(t *testing.T) telegram.OutgoingMessage {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		t.Fatalf("expected a reply, got none")
	}
	return s.messages[len(s.messages)-1]
}

func botQuestions() []survey.Question {
	return []survey.Question{
		{
			ID: 1, Position: 1, Text: "How long have you played?", Weight: 1,
			Options: []survey.Option{
				{ID: 11, QuestionID: 1, Text: "Just started", Points: 1},
				{ID: 12, QuestionID: 1, Text: "Years", Points: 4},
			},
		},
		{
			ID: 2, Position: 2, Text: "Which serve do you use?", Weight: 1,
			Options: []survey.Option{
				{ID: 21, QuestionID: 2, Text: "Underhand", Points: 2},
				{ID: 22, QuestionID: 2, Text: "Jump serve", Points: 5},
			},
		},
	}
}

type botFixture struct {
	bot      *Bot
	sender   *fakeSender
	recorder *metrics.Recorder
	updateID int64
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	catalog, err := memory.NewCatalogRepository(botQuestions())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	players := memory.NewPlayerRepository(nil)
	sessions := memory.NewSessionStore(time.Hour)
	events := memory.NewEventRepository(players)
	admins := usecase.NewAdminSet([]int64{testAdmin})
	logger := logging.NewNop()

	services := Services{
		Registration: usecase.NewRegistrationService(players, catalog, sessions, logger),
		Players:      usecase.NewPlayerService(players, catalog, sessions),
		Events:       usecase.NewEventService(events, players, admins, logger),
		Teams:        usecase.NewTeamService(events, admins, 2, logger),
	}

	f := &botFixture{sender: &fakeSender{}, recorder: metrics.NewRecorder()}
	f.bot = New(services, admins, f.sender, logger, f.recorder)
	return f
}

func (f *botFixture) command(t *testing.T, from int64, username, text string) telegram.OutgoingMessage {
	t.Helper()
	f.updateID++
	err := f.bot.HandleUpdate(t.Context(), telegram.Update{
		UpdateID: f.updateID,
		Message: &telegram.Message{
			MessageID: f.updateID,
			From:      &telegram.User{ID: from, FirstName: username, Username: username},
			Chat:      telegram.Chat{ID: from, Type: "private"},
			Text:      text,
		},
	})
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
	return f.sender.last(t)
}

func (f *botFixture) press(t *testing.T, from int64, data string) telegram.OutgoingMessage {
	t.Helper()
	f.updateID++
	err := f.bot.HandleUpdate(t.Context(), telegram.Update{
		UpdateID: f.updateID,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb",
			From:    telegram.User{ID: from, FirstName: "p"},
			Message: &telegram.Message{Chat: telegram.Chat{ID: from, Type: "private"}},
			Data:    data,
		},
	})
	if err != nil {
		t.Fatalf("press %q: %v", data, err)
	}
	return f.sender.last(t)
}

func TestBot_StartGreets(t *testing.T) {
	f := newBotFixture(t)

	reply := f.command(t, 100, "ana", "/start")
	if reply.Text != textWelcome || reply.ChatID != 100 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestBot_RegistrationSurveyFlow(t *testing.T) {
	f := newBotFixture(t)

	reply := f.command(t, 100, "ana", "/register")
	if !strings.Contains(reply.Text, "Question 1/2") || !strings.Contains(reply.Text, "How long have you played?") {
		t.Fatalf("unexpected first question: %q", reply.Text)
	}
	if reply.ReplyMarkup == nil || len(reply.ReplyMarkup.InlineKeyboard) != 2 {
		t.Fatalf("expected two option buttons, got %+v", reply.ReplyMarkup)
	}
	if got := reply.ReplyMarkup.InlineKeyboard[1][0].CallbackData; got != "opt:12" {
		t.Fatalf("unexpected callback data: %q", got)
	}

	reply = f.command(t, 100, "ana", "/survey")
	if !strings.Contains(reply.Text, "Question 1/2") {
		t.Fatalf("expected /survey to re-present question 1, got %q", reply.Text)
	}

	reply = f.press(t, 100, "opt:12")
	if !strings.Contains(reply.Text, "Question 2/2") {
		t.Fatalf("expected second question, got %q", reply.Text)
	}

	reply = f.press(t, 100, "opt:12")
	if reply.Text != textStaleAnswer {
		t.Fatalf("expected stale answer reply, got %q", reply.Text)
	}

	reply = f.press(t, 100, "opt:22")
	if !strings.Contains(reply.Text, textSurveyDone) || !strings.Contains(reply.Text, "Your skill value: 9") {
		t.Fatalf("unexpected completion reply: %q", reply.Text)
	}
	if reply.ReplyMarkup != nil {
		t.Fatalf("completion reply must not carry a keyboard")
	}

	reply = f.command(t, 100, "ana", "/mydata")
	if !strings.Contains(reply.Text, "Telegram Handle: ana") || !strings.Contains(reply.Text, "Skill value: 9") {
		t.Fatalf("unexpected profile: %q", reply.Text)
	}

	reply = f.command(t, 100, "ana", "/register")
	if reply.Text != textAlreadyRegistered {
		t.Fatalf("expected already registered, got %q", reply.Text)
	}

	reply = f.press(t, 100, "opt:21")
	if reply.Text != textNoSession {
		t.Fatalf("expected no session after completion, got %q", reply.Text)
	}

	reply = f.command(t, 100, "ana", "/retake")
	if !strings.Contains(reply.Text, "Question 1/2") {
		t.Fatalf("expected retake to restart survey, got %q", reply.Text)
	}

	f.press(t, 100, "opt:11")
	reply = f.command(t, 100, "ana", "/edit_my_data")
	if !strings.Contains(reply.Text, "Question 1/2") {
		t.Fatalf("expected edit_my_data to restart survey, got %q", reply.Text)
	}

	if len(f.sender.callbacks) != 5 {
		t.Fatalf("expected every callback acknowledged, got %d", len(f.sender.callbacks))
	}
}

func TestBot_CallbackErrors(t *testing.T) {
	f := newBotFixture(t)

	if reply := f.press(t, 100, "opt:11"); reply.Text != textNoSession {
		t.Fatalf("expected no session for unregistered player, got %q", reply.Text)
	}

	f.command(t, 100, "ana", "/register")
	if reply := f.press(t, 100, "opt:22"); reply.Text != textUnknownOption {
		t.Fatalf("expected unknown option for later question, got %q", reply.Text)
	}
	if reply := f.press(t, 100, "garbage"); reply.Text != textUnknownOption {
		t.Fatalf("expected unknown option for malformed data, got %q", reply.Text)
	}
}

func TestBot_MyDataUnregistered(t *testing.T) {
	f := newBotFixture(t)

	if reply := f.command(t, 100, "ana", "/mydata"); reply.Text != textNotRegistered {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if reply := f.command(t, 100, "ana", "/retake"); reply.Text != textNotRegistered {
		t.Fatalf("unexpected retake reply: %q", reply.Text)
	}
	if reply := f.command(t, 100, "ana", "/edit_my_data"); reply.Text != textNotRegistered {
		t.Fatalf("unexpected edit_my_data reply: %q", reply.Text)
	}
}

func TestBot_EventLifecycle(t *testing.T) {
	f := newBotFixture(t)

	if reply := f.command(t, 100, "ana", "/event_create Beach Fun 2"); reply.Text != textUnauthorized {
		t.Fatalf("expected unauthorized for non-admin, got %q", reply.Text)
	}
	if reply := f.command(t, testAdmin, "org", "/event_create Beach Fun"); !strings.HasPrefix(reply.Text, "Usage: /event_create") {
		t.Fatalf("expected usage, got %q", reply.Text)
	}
	if reply := f.command(t, testAdmin, "org", "/event_create Beach Fun 0"); !strings.HasPrefix(reply.Text, "Invalid input: ") {
		t.Fatalf("expected invalid input for zero capacity, got %q", reply.Text)
	}

	reply := f.command(t, testAdmin, "org", `/event_create "Beach Cup" Fun 2 2026-08-01T18:00 North Court`)
	if reply.Text != "Event 'Beach Cup' created successfully (ID: 1)." {
		t.Fatalf("unexpected create reply: %q", reply.Text)
	}

	reply = f.command(t, testAdmin, "org", "/event_list")
	if !strings.Contains(reply.Text, "- Beach Cup (ID: 1) 2026-08-01 18:00 @ North Court [0/2]") {
		t.Fatalf("unexpected event list: %q", reply.Text)
	}

	if reply := f.command(t, 100, "ana", "/event_join 1"); reply.Text != textNotRegistered {
		t.Fatalf("expected unregistered join refusal, got %q", reply.Text)
	}

	for _, p := range []struct {
		id   int64
		name string
	}{{100, "ana"}, {200, "bia"}, {300, "cleo"}} {
		f.command(t, p.id, p.name, "/register")
	}

	if reply := f.command(t, 100, "ana", "/event_join 1"); reply.Text != textJoined {
		t.Fatalf("unexpected join reply: %q", reply.Text)
	}
	if reply := f.command(t, 100, "ana", "/event_join 1"); reply.Text != textAlreadyJoined {
		t.Fatalf("expected already joined, got %q", reply.Text)
	}
	if reply := f.command(t, 200, "bia", "/event_join 1"); reply.Text != textJoined {
		t.Fatalf("unexpected join reply: %q", reply.Text)
	}
	if reply := f.command(t, 300, "cleo", "/event_join 1"); reply.Text != textEventFull {
		t.Fatalf("expected event full, got %q", reply.Text)
	}
	if reply := f.command(t, 300, "cleo", "/event_join 99"); reply.Text != textEventNotFound {
		t.Fatalf("expected event not found, got %q", reply.Text)
	}
	if reply := f.command(t, 300, "cleo", "/event_join abc"); reply.Text != "Usage: "+usageEventJoin {
		t.Fatalf("expected usage, got %q", reply.Text)
	}

	reply = f.command(t, 300, "cleo", "/event_roster 1")
	if reply.Text != "Beach Cup roster (2/2):\n1. ana\n2. bia" {
		t.Fatalf("unexpected roster: %q", reply.Text)
	}

	if reply := f.command(t, 100, "ana", "/balance_teams 1"); reply.Text != textUnauthorized {
		t.Fatalf("expected unauthorized balance, got %q", reply.Text)
	}
	reply = f.command(t, testAdmin, "org", "/balance_teams 1")
	if !strings.HasPrefix(reply.Text, "Balanced Teams:\nTeam 1 (skill 0):\n  - ana\nTeam 2 (skill 0):\n  - bia") {
		t.Fatalf("unexpected teams: %q", reply.Text)
	}
	if reply := f.command(t, testAdmin, "org", "/balance_teams 1 3"); reply.Text != "Not enough players to form the requested teams." {
		t.Fatalf("expected insufficient players, got %q", reply.Text)
	}
}

func TestBot_UnknownInput(t *testing.T) {
	f := newBotFixture(t)

	if reply := f.command(t, 100, "ana", "/dance"); reply.Text != textUnknownCommand {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if reply := f.command(t, 100, "ana", "hello there"); reply.Text != textUnknownCommand {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	// Plain chatter in groups is ignored.
	before := len(f.sender.messages)
	err := f.bot.HandleUpdate(t.Context(), telegram.Update{
		UpdateID: 999,
		Message: &telegram.Message{
			From: &telegram.User{ID: 100},
			Chat: telegram.Chat{ID: -5, Type: "group"},
			Text: "nice game yesterday",
		},
	})
	if err != nil {
		t.Fatalf("handle group message: %v", err)
	}
	if len(f.sender.messages) != before {
		t.Fatalf("expected no reply in group chat")
	}

	if err := f.bot.HandleUpdate(t.Context(), telegram.Update{UpdateID: 1000}); err != nil {
		t.Fatalf("empty update should be ignored, got %v", err)
	}
}

func TestBot_SendFailureIsReturned(t *testing.T) {
	f := newBotFixture(t)
	f.sender.sendErr = errors.New("network down")

	err := f.bot.HandleUpdate(t.Context(), telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From: &telegram.User{ID: 100},
			Chat: telegram.Chat{ID: 100, Type: "private"},
			Text: "/start",
		},
	})
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Fatalf("expected send failure, got %v", err)
	}
}
