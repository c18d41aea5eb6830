package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"
)

// handleMessage routes one incoming message: rate limit, resolve the sender,
// then either dispatch a slash command or feed the text into the pending
// conversation.
func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	from := message.From

	// In a group, commands addressed to another bot are not ours to answer.
	if mention := commandMention(message.CommandWithAt()); mention != "" && !strings.EqualFold(mention, r.cfg.Username) {
		return nil
	}

	limiterKey := "message"
	if message.IsCommand() {
		limiterKey = "/" + message.Command()
	}
	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, red.UserCommandKey(from.ID, limiterKey), messageRateLimit, time.Minute)
		if err != nil {
			// Fail open: a limiter outage must not mute the bot.
			r.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendMessage(ctx, message.Chat.ID, r.tr.T("err_rate_limited"))
		}
	}

	user, err := r.users.RegisterOrFetch(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", from.ID).Msg("failed to resolve user")
		return r.SendMessage(ctx, message.Chat.ID, r.tr.T("internal_error"))
	}
	user.IsAdmin = user.IsAdmin || r.isAdmin(from.ID)
	ctx = logging.WithUserID(logging.WithTgID(ctx, from.ID), user.ID)

	if message.IsCommand() {
		return r.dispatchCommand(ctx, message, user)
	}

	consumed, err := r.engine.HandleInput(ctx, from.ID, message.Text)
	if err != nil {
		return fmt.Errorf("conversation input: %w", err)
	}
	if consumed || !message.Chat.IsPrivate() || strings.TrimSpace(message.Text) == "" {
		return nil
	}
	// Free text with nothing pending: groups get silence, DMs get a pointer.
	return r.SendMessage(ctx, message.Chat.ID, r.tr.T("unknown_text_hint"))
}

func (r *RealTelegramBotAdapter) dispatchCommand(ctx context.Context, message *tgbotapi.Message, user *model.User) error {
	key := message.Command()
	metrics.IncTelegramCommand("/" + key)

	// /cancel never goes through the registry: it must work exactly while a
	// conversation is pending, and stay a silent no-op otherwise.
	if key == "cancel" {
		return r.engine.Cancel(ctx, message.From.ID)
	}

	reg, ok := r.registry.Get(key)
	if !ok {
		if !message.Chat.IsPrivate() {
			return nil
		}
		return r.SendMessage(ctx, message.Chat.ID, r.tr.T("err_unknown_command"))
	}

	inv := command.Invocation{
		Origin:     command.OriginCommand,
		ChatID:     message.Chat.ID,
		TelegramID: message.From.ID,
		User:       user,
		Args:       message.CommandArguments(),
	}

	// Each run gets its own goroutine. The orchestrator parks during
	// interactive collection, and a parked update worker would starve the
	// very updates that resolve it.
	go r.runCommand(ctx, reg, inv)
	return nil
}

func (r *RealTelegramBotAdapter) runCommand(ctx context.Context, reg *command.Registered, inv command.Invocation) {
	if err := r.orch.Run(ctx, reg, inv); err != nil {
		r.log.Error().Err(err).Str("command", reg.Key).Int64("tg_id", inv.TelegramID).Msg("command run failed")
	}
}

// commandMention extracts the bot name from a "/cmd@BotName" form, or ""
// when the command carries no mention.
func commandMention(withAt string) string {
	if i := strings.IndexByte(withAt, '@'); i >= 0 {
		return withAt[i+1:]
	}
	return ""
}
