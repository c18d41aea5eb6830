package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/usecase"
)

func (c *Catalog) eventsDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_events"),
		Parse:       parseNone,
	}
}

func (c *Catalog) handleEvents(ctx context.Context, inv command.Invocation, _ command.FieldValues) error {
	evs, err := c.deps.Events.Upcoming(ctx)
	if err != nil {
		return err
	}
	if len(evs) == 0 {
		return c.reply(ctx, inv, c.tr.T("events_none"))
	}
	rows := make([][]adapter.InlineButton, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, []adapter.InlineButton{
			{Text: trimLabel(c.render.EventLine(ev)), Data: "cmd:join:" + ev.ID},
		})
	}
	return c.bot.SendButtons(ctx, inv.ChatID, c.tr.T("events_header"), rows)
}

func (c *Catalog) newEventDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_newevent"),
		Parse:       c.parseNewEvent,
		Steps: []command.StepSpec{
			c.textStep(fieldTitle, "ask_title", c.titleValidator),
			c.textStep(fieldDate, "ask_date", dateValidator(c.deps.Loc)),
			c.textStep(fieldTime, "ask_time", clockValidator),
			c.textStep(fieldLocation, "ask_location", locationValidator),
			c.textStep(fieldCapacity, "ask_capacity", capacityValidator),
			c.textStep(fieldCost, "ask_cost", moneyValidator),
		},
	}
}

func (c *Catalog) parseNewEvent(_ context.Context, req command.ParseRequest) (command.ParseOutcome, error) {
	return parsePositional(req.Args, []positionalField{
		{fieldTitle, c.titleValidator},
		{fieldDate, dateValidator(req.Deps.Loc)},
		{fieldTime, clockValidator},
		{fieldLocation, locationValidator},
		{fieldCapacity, capacityValidator},
		{fieldCost, moneyValidator},
	})
}

func (c *Catalog) handleNewEvent(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	start, err := startOf(values[fieldDate], values[fieldTime], c.deps.Loc)
	if err != nil {
		return err
	}
	if !start.After(time.Now()) {
		return c.reply(ctx, inv, c.tr.T("err_start_past"))
	}
	capacity, err := strconv.Atoi(values[fieldCapacity])
	if err != nil {
		return err
	}
	cost, err := strconv.ParseInt(values[fieldCost], 10, 64)
	if err != nil {
		return err
	}

	ev, err := c.deps.Events.Create(ctx, usecase.CreateEventInput{
		Title:     values[fieldTitle],
		Location:  values[fieldLocation],
		StartsAt:  start,
		Duration:  c.defaultDuration,
		Capacity:  capacity,
		CostCents: cost,
		CreatedBy: inv.User.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return c.reply(ctx, inv, c.tr.T("err_invalid_event"))
		}
		return err
	}

	if err := c.reply(ctx, inv, c.tr.T("event_created")+"\n\n"+c.render.EventCard(ev, 0, 0)); err != nil {
		return err
	}
	if err := c.ann.AnnounceEvent(ctx, ev); err != nil {
		c.log.Warn().Err(err).Str("event_id", ev.ID).Msg("announcement failed after create")
	}
	return nil
}

func (c *Catalog) cancelEventDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_cancelevent"),
		Parse:       c.eventArgParser(c.tr.T("err_unknown_event")),
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_cancel_event", c.cancellableEventsSource),
		},
	}
}

func (c *Catalog) handleCancelEvent(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	ev, err := c.deps.Events.Cancel(ctx, values[fieldEventID], inv.User.ID, inv.User.IsAdmin)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
	case errors.Is(err, domain.ErrEventCancelled):
		return c.reply(ctx, inv, c.tr.T("err_already_cancelled"))
	case errors.Is(err, domain.ErrNotAllowed):
		return c.reply(ctx, inv, c.tr.T("err_not_allowed"))
	case err != nil:
		return err
	}

	if err := c.reply(ctx, inv, c.tr.T("event_cancelled", c.render.EventLine(ev))); err != nil {
		return err
	}
	if err := c.ann.AnnounceCancelled(ctx, ev); err != nil {
		c.log.Warn().Err(err).Str("event_id", ev.ID).Msg("cancellation announcement failed")
	}
	return nil
}

// eventArgParser treats the whole argument string as an event id: complete
// when it resolves, pending a choice when absent, rejected when unknown.
func (c *Catalog) eventArgParser(unknownMsg string) command.ParseFunc {
	return func(ctx context.Context, req command.ParseRequest) (command.ParseOutcome, error) {
		id := firstField(req.Args)
		if id == "" {
			return command.ParseOutcome{Missing: []string{fieldEventID}}, nil
		}
		if _, err := req.Deps.Events.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return command.ParseOutcome{Reject: unknownMsg}, nil
			}
			return command.ParseOutcome{}, err
		}
		return command.ParseOutcome{Values: command.FieldValues{fieldEventID: id}}, nil
	}
}
