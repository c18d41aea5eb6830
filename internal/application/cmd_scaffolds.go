package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/usecase"
)

func (c *Catalog) newWeeklyDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_newweekly"),
		Parse:       c.parseNewWeekly,
		Steps: []command.StepSpec{
			c.textStep(fieldTitle, "ask_title", c.titleValidator),
			c.textStep(fieldWeekday, "ask_weekday", weekdayValidator),
			c.textStep(fieldTime, "ask_time", clockValidator),
			c.textStep(fieldLocation, "ask_location", locationValidator),
			c.textStep(fieldCapacity, "ask_capacity", capacityValidator),
			c.textStep(fieldCost, "ask_cost", moneyValidator),
		},
	}
}

func (c *Catalog) parseNewWeekly(_ context.Context, req command.ParseRequest) (command.ParseOutcome, error) {
	return parsePositional(req.Args, []positionalField{
		{fieldTitle, c.titleValidator},
		{fieldWeekday, weekdayValidator},
		{fieldTime, clockValidator},
		{fieldLocation, locationValidator},
		{fieldCapacity, capacityValidator},
		{fieldCost, moneyValidator},
	})
}

func (c *Catalog) handleNewWeekly(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	weekday, err := model.ParseWeekday(values[fieldWeekday])
	if err != nil {
		return err
	}
	capacity, err := strconv.Atoi(values[fieldCapacity])
	if err != nil {
		return err
	}
	cost, err := strconv.ParseInt(values[fieldCost], 10, 64)
	if err != nil {
		return err
	}

	sc, err := c.deps.Scaffolds.Create(ctx, usecase.CreateScaffoldInput{
		Title:      values[fieldTitle],
		Location:   values[fieldLocation],
		Weekday:    weekday,
		StartClock: values[fieldTime],
		Duration:   c.defaultDuration,
		Capacity:   capacity,
		CostCents:  cost,
		LeadDays:   c.defaultLeadDays,
		CreatedBy:  inv.User.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return c.reply(ctx, inv, c.tr.T("err_invalid_scaffold"))
		}
		return err
	}

	next := sc.NextOccurrence(time.Now(), c.deps.Loc)
	return c.reply(ctx, inv, c.tr.T("scaffold_created", c.render.ScaffoldLine(sc), c.render.when(next)))
}

func (c *Catalog) weekliesDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_weeklies"),
		Parse:       parseNone,
	}
}

func (c *Catalog) handleWeeklies(ctx context.Context, inv command.Invocation, _ command.FieldValues) error {
	list, err := c.deps.Scaffolds.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return c.reply(ctx, inv, c.tr.T("weeklies_none"))
	}
	var b strings.Builder
	b.WriteString(c.tr.T("weeklies_header"))
	for _, sc := range list {
		b.WriteString("\n")
		b.WriteString(c.render.ScaffoldLine(sc))
	}
	return c.reply(ctx, inv, b.String())
}

func (c *Catalog) stopWeeklyDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_stopweekly"),
		Parse:       c.parseStopWeekly,
		Steps: []command.StepSpec{
			c.choiceStep(fieldScaffoldID, "ask_stop_scaffold", c.activeScaffoldsSource),
		},
	}
}

func (c *Catalog) parseStopWeekly(ctx context.Context, req command.ParseRequest) (command.ParseOutcome, error) {
	id := firstField(req.Args)
	if id == "" {
		return command.ParseOutcome{Missing: []string{fieldScaffoldID}}, nil
	}
	if _, err := req.Deps.Scaffolds.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.ParseOutcome{Reject: c.tr.T("err_unknown_scaffold")}, nil
		}
		return command.ParseOutcome{}, err
	}
	return command.ParseOutcome{Values: command.FieldValues{fieldScaffoldID: id}}, nil
}

func (c *Catalog) handleStopWeekly(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	sc, err := c.deps.Scaffolds.Deactivate(ctx, values[fieldScaffoldID], inv.User.ID, inv.User.IsAdmin)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.reply(ctx, inv, c.tr.T("err_unknown_scaffold"))
	case errors.Is(err, domain.ErrScaffoldInactive):
		return c.reply(ctx, inv, c.tr.T("err_scaffold_stopped"))
	case errors.Is(err, domain.ErrNotAllowed):
		return c.reply(ctx, inv, c.tr.T("err_not_allowed"))
	case err != nil:
		return err
	}
	return c.reply(ctx, inv, c.tr.T("scaffold_stopped", sc.Title))
}
