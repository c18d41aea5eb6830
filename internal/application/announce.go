package application

import (
	"context"

	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Announcer posts event news to the configured group chat. With no group
// chat configured every method is a no-op, so handlers can call it blindly.
type Announcer struct {
	bot         adapter.TelegramBotAdapter
	tr          *i18n.Translator
	render      *Renderer
	groupChatID int64
	log         zerolog.Logger
}

func NewAnnouncer(bot adapter.TelegramBotAdapter, tr *i18n.Translator, render *Renderer, groupChatID int64, log zerolog.Logger) *Announcer {
	return &Announcer{
		bot:         bot,
		tr:          tr,
		render:      render,
		groupChatID: groupChatID,
		log:         log.With().Str("component", "announcer").Logger(),
	}
}

func (a *Announcer) enabled() bool { return a.groupChatID != 0 }

// AnnounceEvent posts the event card with a join button.
func (a *Announcer) AnnounceEvent(ctx context.Context, ev *model.Event) error {
	if !a.enabled() {
		return nil
	}
	text := a.tr.T("announce_new_event") + "\n\n" + a.render.EventCard(ev, 0, 0)
	rows := [][]adapter.InlineButton{
		{
			{Text: a.tr.T("button_join"), Data: "cmd:join:" + ev.ID},
			{Text: a.tr.T("button_roster"), Data: "cmd:roster:" + ev.ID},
		},
	}
	if err := a.bot.SendButtons(ctx, a.groupChatID, text, rows); err != nil {
		a.log.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to announce event")
		return err
	}
	return nil
}

// AnnounceCancelled tells the group an event is off.
func (a *Announcer) AnnounceCancelled(ctx context.Context, ev *model.Event) error {
	if !a.enabled() {
		return nil
	}
	text := a.tr.T("announce_cancelled", a.render.EventLine(ev))
	if err := a.bot.SendMessage(ctx, a.groupChatID, text); err != nil {
		a.log.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to announce cancellation")
		return err
	}
	return nil
}

// GroupReminder posts the pre-start reminder with the current seat picture.
func (a *Announcer) GroupReminder(ctx context.Context, ev *model.Event, joined, waitlisted int) error {
	if !a.enabled() {
		return nil
	}
	text := a.tr.T("announce_reminder") + "\n\n" + a.render.EventCard(ev, joined, waitlisted)
	rows := [][]adapter.InlineButton{
		{
			{Text: a.tr.T("button_join"), Data: "cmd:join:" + ev.ID},
			{Text: a.tr.T("button_roster"), Data: "cmd:roster:" + ev.ID},
		},
	}
	if err := a.bot.SendButtons(ctx, a.groupChatID, text, rows); err != nil {
		return err
	}
	metrics.IncReminderSent("group")
	return nil
}
