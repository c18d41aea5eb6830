package application

import (
	"context"
	"errors"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
)

func (c *Catalog) joinDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_join"),
		Parse:       c.eventArgParser(c.tr.T("err_unknown_event")),
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_join_event", c.openEventsSource),
		},
	}
}

func (c *Catalog) handleJoin(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	eventID := values[fieldEventID]
	p, err := c.deps.Attendance.Join(ctx, eventID, inv.User.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
	case errors.Is(err, domain.ErrEventCancelled):
		return c.reply(ctx, inv, c.tr.T("err_event_cancelled"))
	case errors.Is(err, domain.ErrEventClosed):
		return c.reply(ctx, inv, c.tr.T("err_event_closed"))
	case errors.Is(err, domain.ErrAlreadyJoined):
		return c.reply(ctx, inv, c.tr.T("err_already_joined"))
	case err != nil:
		return err
	}

	ev, err := c.deps.Events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if p.Status == model.ParticipantStatusWaitlisted {
		return c.reply(ctx, inv, c.tr.T("joined_waitlisted", c.render.EventLine(ev)))
	}
	return c.reply(ctx, inv, c.tr.T("joined_ok", c.render.EventLine(ev)))
}

func (c *Catalog) leaveDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_leave"),
		Parse:       c.eventArgParser(c.tr.T("err_unknown_event")),
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_leave_event", c.joinedEventsSource),
		},
	}
}

func (c *Catalog) handleLeave(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	eventID := values[fieldEventID]
	promoted, err := c.deps.Attendance.Leave(ctx, eventID, inv.User.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
	case errors.Is(err, domain.ErrNotJoined):
		return c.reply(ctx, inv, c.tr.T("err_not_joined"))
	case errors.Is(err, domain.ErrEventClosed):
		return c.reply(ctx, inv, c.tr.T("err_event_closed"))
	case err != nil:
		return err
	}

	if err := c.reply(ctx, inv, c.tr.T("left_ok")); err != nil {
		return err
	}
	if promoted != nil {
		c.notifyPromoted(ctx, eventID, promoted.UserID)
	}
	return nil
}

// notifyPromoted DMs the member who moved off the waitlist. Best effort; the
// leaver's flow must not fail because the promotee blocked the bot.
func (c *Catalog) notifyPromoted(ctx context.Context, eventID, userID string) {
	u, err := c.deps.Users.GetByID(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("promoted user lookup failed")
		return
	}
	ev, err := c.deps.Events.Get(ctx, eventID)
	if err != nil {
		c.log.Warn().Err(err).Str("event_id", eventID).Msg("promoted event lookup failed")
		return
	}
	if err := c.bot.SendMessage(ctx, u.TelegramID, c.tr.T("promoted_notice", c.render.EventLine(ev))); err != nil {
		c.log.Warn().Err(err).Int64("telegram_id", u.TelegramID).Msg("promotion notice failed")
	}
}

func (c *Catalog) rosterDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_roster"),
		Parse:       c.eventArgParser(c.tr.T("err_unknown_event")),
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_event", c.settleableEventsSource),
		},
	}
}

func (c *Catalog) handleRoster(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	view, err := c.deps.Attendance.Roster(ctx, values[fieldEventID])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
		}
		return err
	}
	return c.reply(ctx, inv, c.render.RosterText(view))
}
