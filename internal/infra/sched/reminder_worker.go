package sched

import (
	"context"
	"fmt"
	"time"

	"telegram-event-scheduler/internal/application"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"
	"telegram-event-scheduler/internal/infra/worker"
	"telegram-event-scheduler/internal/usecase"

	"github.com/rs/zerolog"
)

// reminderKind tags the dedup marker for the single pre-start reminder.
const reminderKind = "pre_start"

// ReminderWorker pings the group and every joined member shortly before an
// event starts. The redis marker holds each event to exactly one reminder,
// across restarts and overlapping runs alike.
type ReminderWorker struct {
	lead     time.Duration
	eventUC  usecase.EventUseCase
	attendUC usecase.AttendanceUseCase
	markers  *red.ReminderMarkerStore
	announce *application.Announcer
	bot      adapter.TelegramBotAdapter
	tr       *i18n.Translator
	render   *application.Renderer
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewReminderWorker(
	lead time.Duration,
	eventUC usecase.EventUseCase,
	attendUC usecase.AttendanceUseCase,
	markers *red.ReminderMarkerStore,
	announce *application.Announcer,
	bot adapter.TelegramBotAdapter,
	tr *i18n.Translator,
	render *application.Renderer,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		lead:     lead,
		eventUC:  eventUC,
		attendUC: attendUC,
		markers:  markers,
		announce: announce,
		bot:      bot,
		tr:       tr,
		render:   render,
		pool:     pool,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Name() string { return "reminder" }

func (w *ReminderWorker) Run(ctx context.Context) error {
	upcoming, err := w.eventUC.Upcoming(ctx)
	if err != nil {
		return fmt.Errorf("list upcoming: %w", err)
	}
	cutoff := time.Now().Add(w.lead)
	for _, ev := range upcoming {
		if ev.StartsAt.After(cutoff) {
			break // soonest first
		}
		w.remind(ctx, ev)
	}
	return nil
}

func (w *ReminderWorker) remind(ctx context.Context, ev *model.Event) {
	first, err := w.markers.MarkOnce(ctx, reminderKind, ev.ID)
	if err != nil {
		// No marker means no dedup; skip rather than re-ping the group
		// every tick.
		w.log.Warn().Err(err).Str("event_id", ev.ID).Msg("reminder marker unavailable, skipping")
		return
	}
	if !first {
		return
	}

	view, err := w.attendUC.Roster(ctx, ev.ID)
	if err != nil {
		w.log.Error().Err(err).Str("event_id", ev.ID).Msg("roster lookup failed")
		return
	}

	if err := w.announce.GroupReminder(ctx, ev, len(view.Joined), len(view.Waitlist)); err != nil {
		w.log.Warn().Err(err).Str("event_id", ev.ID).Msg("group reminder failed")
	}
	w.log.Info().Str("event_id", ev.ID).Time("starts_at", ev.StartsAt).Int("joined", len(view.Joined)).Msg("reminder sent")

	w.fanOut(ev, view.Joined)
}

// fanOut DMs every joined member through the pool so one slow Telegram
// call cannot stall the scheduler tick.
func (w *ReminderWorker) fanOut(ev *model.Event, joined []usecase.RosterEntry) {
	text := w.tr.T("dm_reminder", w.render.EventLine(ev))
	for _, entry := range joined {
		if entry.User == nil || entry.User.TelegramID == 0 {
			continue
		}
		tgID := entry.User.TelegramID
		err := w.pool.Submit(func(ctx context.Context) error {
			if err := w.bot.SendMessage(ctx, tgID, text); err != nil {
				metrics.IncReminderTask("failed")
				return fmt.Errorf("reminder dm to %d: %w", tgID, err)
			}
			metrics.IncReminderSent("participant")
			metrics.IncReminderTask("completed")
			return nil
		})
		if err != nil {
			metrics.IncReminderTask("dropped")
			w.log.Warn().Err(err).Int64("tg_id", tgID).Msg("reminder dm dropped")
		}
	}
}
