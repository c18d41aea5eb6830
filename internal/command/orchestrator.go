package command

import (
	"context"
	"errors"
	"fmt"

	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// OrchestratorMessages are the replies the orchestrator sends on its own
// behalf, localized by the caller.
type OrchestratorMessages struct {
	Busy     string // another conversation is pending
	Internal string // infrastructure failure
}

// Orchestrator drives one command run end to end: parse, collect whatever the
// parser reported missing, then invoke the handler with the merged values.
type Orchestrator struct {
	engine *conversation.Engine
	bot    adapter.TelegramBotAdapter
	deps   *Deps
	msgs   OrchestratorMessages
	log    zerolog.Logger
}

func NewOrchestrator(engine *conversation.Engine, bot adapter.TelegramBotAdapter, deps *Deps, msgs OrchestratorMessages, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		engine: engine,
		bot:    bot,
		deps:   deps,
		msgs:   msgs,
		log:    log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes a registered command for one invocation. The caller goroutine
// is parked for the duration of any interactive collection.
//
// Cancellation and expiry of the collection end the run silently. A parser
// that reports a missing field without a step descriptor is a wiring defect
// and panics.
func (o *Orchestrator) Run(ctx context.Context, reg *Registered, inv Invocation) error {
	if o.engine.IsActive(inv.TelegramID) {
		metrics.IncCommandRun(reg.Key, "busy")
		return o.bot.SendMessage(ctx, inv.ChatID, o.msgs.Busy)
	}

	out, err := reg.Def.Parse(ctx, ParseRequest{Args: inv.Args, Inv: inv, Deps: o.deps})
	if err != nil {
		metrics.IncCommandRun(reg.Key, "error")
		o.log.Error().Err(err).Str("command", reg.Key).Int64("tg_id", inv.TelegramID).Msg("parser failed")
		o.sendBestEffort(ctx, inv.ChatID, o.msgs.Internal)
		return fmt.Errorf("parse %s: %w", reg.Key, err)
	}

	if out.Reject != "" {
		metrics.IncCommandRun(reg.Key, "rejected")
		return o.bot.SendMessage(ctx, inv.ChatID, out.Reject)
	}

	values := out.Values
	if values == nil {
		values = make(FieldValues, len(out.Missing))
	}

	for _, field := range out.Missing {
		spec, ok := reg.Def.StepFor(field)
		if !ok {
			panic(fmt.Sprintf("command %q: parser reported missing field %q but no step descriptor exists", reg.Key, field))
		}

		value, err := o.engine.Collect(ctx, inv.TelegramID, inv.ChatID, Hydrate(spec, o.deps, inv))
		switch {
		case err == nil:
			values[field] = value
		case errors.Is(err, domain.ErrConversationCancelled):
			metrics.IncCommandRun(reg.Key, "cancelled")
			return nil
		case errors.Is(err, domain.ErrConversationExpired):
			metrics.IncCommandRun(reg.Key, "expired")
			return nil
		case errors.Is(err, domain.ErrConversationActive):
			metrics.IncCommandRun(reg.Key, "busy")
			return o.bot.SendMessage(ctx, inv.ChatID, o.msgs.Busy)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Shutdown unwinds pending collections; nobody needs a reply.
			metrics.IncCommandRun(reg.Key, "aborted")
			return err
		default:
			metrics.IncCommandRun(reg.Key, "error")
			o.log.Error().Err(err).Str("command", reg.Key).Str("field", field).Int64("tg_id", inv.TelegramID).Msg("collection failed")
			o.sendBestEffort(ctx, inv.ChatID, o.msgs.Internal)
			return fmt.Errorf("collect %s.%s: %w", reg.Key, field, err)
		}
	}

	if err := reg.Handle(ctx, inv, values); err != nil {
		metrics.IncCommandRun(reg.Key, "error")
		o.log.Error().Err(err).Str("command", reg.Key).Int64("tg_id", inv.TelegramID).Msg("handler failed")
		o.sendBestEffort(ctx, inv.ChatID, o.msgs.Internal)
		return fmt.Errorf("handle %s: %w", reg.Key, err)
	}
	metrics.IncCommandRun(reg.Key, "completed")
	return nil
}

func (o *Orchestrator) sendBestEffort(ctx context.Context, chatID int64, text string) {
	if err := o.bot.SendMessage(ctx, chatID, text); err != nil {
		o.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send error reply")
	}
}
