package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"
)

// handleQuery routes one inline-button press. Payloads carry their own
// namespace: "cv:" data belongs to the conversation engine, "cmd:" data
// launches a command as if it had been typed.
func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return nil
	}

	// Always ack so the client stops its spinner, whatever the outcome.
	defer func() {
		_, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, ""))
	}()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	data := strings.TrimSpace(query.Data)
	if data == "" {
		return nil
	}

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, red.UserCommandKey(query.From.ID, "callback"), callbackRateLimit, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			// Button mashing gets dropped quietly; the ack above already
			// stops the spinner.
			metrics.IncRateLimitTriggered()
			return nil
		}
	}

	switch {
	case data == conversation.CallbackCancel:
		return r.engine.Cancel(ctx, query.From.ID)

	case strings.HasPrefix(data, conversation.CallbackOptionPrefix):
		consumed, err := r.engine.HandleInput(ctx, query.From.ID, strings.TrimPrefix(data, conversation.CallbackOptionPrefix))
		if err != nil {
			return fmt.Errorf("conversation option: %w", err)
		}
		if !consumed {
			// Stale keyboard from an expired conversation.
			r.log.Debug().Int64("tg_id", query.From.ID).Msg("option press with no pending conversation")
		}
		return nil

	case strings.HasPrefix(data, callbackCommandPrefix):
		return r.dispatchCallbackCommand(ctx, query, chatID, strings.TrimPrefix(data, callbackCommandPrefix))

	default:
		r.log.Warn().Str("data", data).Msg("unknown callback payload")
		return nil
	}
}

// dispatchCallbackCommand runs the command named by a "cmd:<key>[:args]"
// button payload.
func (r *RealTelegramBotAdapter) dispatchCallbackCommand(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, rest string) error {
	key, args, _ := strings.Cut(rest, ":")
	metrics.IncTelegramCommand("cb:" + key)

	reg, ok := r.registry.Get(key)
	if !ok {
		r.log.Warn().Str("command", key).Msg("callback names unknown command")
		return nil
	}

	from := query.From
	user, err := r.users.RegisterOrFetch(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", from.ID).Msg("failed to resolve user")
		return r.SendMessage(ctx, chatID, r.tr.T("internal_error"))
	}
	user.IsAdmin = user.IsAdmin || r.isAdmin(from.ID)
	ctx = logging.WithUserID(logging.WithTgID(ctx, from.ID), user.ID)

	inv := command.Invocation{
		Origin:     command.OriginCallback,
		CallbackID: query.ID,
		ChatID:     chatID,
		TelegramID: from.ID,
		User:       user,
		Args:       args,
	}

	// Same reasoning as typed commands: collection parks, so it cannot hold
	// an update worker.
	go r.runCommand(ctx, reg, inv)
	return nil
}
