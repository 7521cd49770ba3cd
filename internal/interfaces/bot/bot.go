package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/platform/id"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/metrics"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
	"go.opentelemetry.io/otel/codes"
)

const (
	kindMessage  = "message"
	kindCallback = "callback_query"
	kindOther    = "other"
)

// Sender is the part of the Bot API the bot replies through.
type Sender interface {
	SendMessage(ctx context.Context, msg telegram.OutgoingMessage) (telegram.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

type Services struct {
	Registration *usecase.RegistrationService
	Players      *usecase.PlayerService
	Events       *usecase.EventService
	Teams        *usecase.TeamService
}

type Bot struct {
	services Services
	admins   usecase.AdminSet
	sender   Sender
	logger   *logging.Logger
	metrics  *metrics.Recorder
	location *time.Location
}

func New(services Services, admins usecase.AdminSet, sender Sender, logger *logging.Logger, recorder *metrics.Recorder) *Bot {
	if logger == nil {
		logger = logging.Default()
	}

	return &Bot{
		services: services,
		admins:   admins,
		sender:   sender,
		logger:   logger,
		metrics:  recorder,
		location: time.UTC,
	}
}

// HandleUpdate processes one update to completion. It only returns an error
// when the reply could not be delivered.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) error {
	kind := updateKind(update)
	if id.RequestIDFromContext(ctx) == "" {
		ctx = id.WithRequestID(ctx, "tg-"+strconv.FormatInt(update.UpdateID, 10))
	}
	ctx, span := startUpdateSpan(ctx, update.UpdateID, kind)
	defer span.End()

	var err error
	switch kind {
	case kindMessage:
		err = b.handleMessage(ctx, update.Message)
	case kindCallback:
		err = b.handleCallback(ctx, update.CallbackQuery)
	default:
		b.logger.DebugContext(ctx, "ignoring unsupported update", "update_id", update.UpdateID)
	}

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.WarnContext(ctx, "handle telegram update failed", "update_id", update.UpdateID, "kind", kind, "error", err)
	}
	b.metrics.ObserveUpdate(kind, outcome)

	return err
}

func updateKind(update telegram.Update) string {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return kindMessage
	case update.CallbackQuery != nil:
		return kindCallback
	default:
		return kindOther
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID
	cmd, ok := parseCommand(msg.Text)
	if !ok {
		if msg.Chat.Type != "private" {
			return nil
		}
		return b.reply(ctx, telegram.OutgoingMessage{ChatID: chatID, Text: textUnknownCommand})
	}

	caller := *msg.From
	started := time.Now()
	out, err := b.runCommand(ctx, caller, chatID, cmd)
	b.metrics.ObserveCommand(commandLabel(cmd.Name), outcomeOf(err), time.Since(started))
	if err != nil {
		b.logCommandError(ctx, cmd.Name, caller.ID, err)
		out = telegram.OutgoingMessage{ChatID: chatID, Text: errorText(err)}
	}

	return b.reply(ctx, out)
}

func (b *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if err := b.sender.AnswerCallbackQuery(ctx, query.ID, ""); err != nil {
		b.logger.WarnContext(ctx, "answer callback query failed", "callback_id", query.ID, "error", err)
	}

	chatID := query.From.ID
	if query.Message != nil {
		chatID = query.Message.Chat.ID
	}

	optionID, ok := parseOptionCallback(query.Data)
	if !ok {
		return b.reply(ctx, telegram.OutgoingMessage{ChatID: chatID, Text: textUnknownOption})
	}

	started := time.Now()
	step, err := b.services.Registration.SubmitAnswer(ctx, query.From.ID, optionID)
	b.metrics.ObserveCommand("answer", outcomeOf(err), time.Since(started))
	if err != nil {
		b.logCommandError(ctx, "answer", query.From.ID, err)
		return b.reply(ctx, telegram.OutgoingMessage{ChatID: chatID, Text: errorText(err)})
	}
	if step.Completed {
		b.metrics.SurveyCompleted()
	}

	return b.reply(ctx, stepMessage(chatID, step))
}

func (b *Bot) reply(ctx context.Context, msg telegram.OutgoingMessage) error {
	if _, err := b.sender.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send reply chat=%d: %w", msg.ChatID, err)
	}
	return nil
}

func (b *Bot) logCommandError(ctx context.Context, name string, identity int64, err error) {
	if outcomeOf(err) == metrics.OutcomeError {
		b.logger.ErrorContext(ctx, "bot command failed", "command", name, "identity", identity, "error", err)
		return
	}
	b.logger.InfoContext(ctx, "bot command refused", "command", name, "identity", identity, "reason", err.Error())
}

// outcomeOf separates refusals the player can act on from failures of the service itself.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errorText(err) == textTryAgain:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRefused
	}
}
