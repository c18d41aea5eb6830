package application

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
)

func (c *Catalog) paidDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_paid"),
		Parse:       c.parsePaid,
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_settle_event", c.settleableEventsSource),
			c.textStep(fieldAmount, "ask_amount", amountValidator),
		},
	}
}

// parsePaid understands three shapes: "/paid" asks for everything, "/paid
// 12.50 [note]" leads with an amount and asks which event, "/paid <event>
// [amount [note]]" starts from an event id. The note never gets its own
// prompt; it only exists when typed.
func (c *Catalog) parsePaid(ctx context.Context, req command.ParseRequest) (command.ParseOutcome, error) {
	fields := strings.Fields(req.Args)
	if len(fields) == 0 {
		return command.ParseOutcome{Missing: []string{fieldEventID, fieldAmount}}, nil
	}

	if cents, err := amountValidator(fields[0]); err == nil {
		out := command.ParseOutcome{
			Values:  command.FieldValues{fieldAmount: cents},
			Missing: []string{fieldEventID},
		}
		if len(fields) > 1 {
			out.Values[fieldNote] = strings.Join(fields[1:], " ")
		}
		return out, nil
	}

	id := fields[0]
	if _, err := req.Deps.Events.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.ParseOutcome{Reject: c.tr.T("err_unknown_event")}, nil
		}
		return command.ParseOutcome{}, err
	}
	out := command.ParseOutcome{Values: command.FieldValues{fieldEventID: id}}
	if len(fields) == 1 {
		out.Missing = []string{fieldAmount}
		return out, nil
	}
	amount, err := amountValidator(fields[1])
	if err != nil {
		return command.ParseOutcome{Reject: err.Error()}, nil
	}
	out.Values[fieldAmount] = amount
	if len(fields) > 2 {
		out.Values[fieldNote] = strings.Join(fields[2:], " ")
	}
	return out, nil
}

func (c *Catalog) handlePaid(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	amount, err := strconv.ParseInt(values[fieldAmount], 10, 64)
	if err != nil {
		return err
	}
	p, err := c.deps.Payments.Record(ctx, values[fieldEventID], inv.User.ID, amount, values[fieldNote])
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
	case errors.Is(err, domain.ErrEventCancelled):
		return c.reply(ctx, inv, c.tr.T("err_event_cancelled"))
	case errors.Is(err, domain.ErrNotJoined):
		return c.reply(ctx, inv, c.tr.T("err_paid_not_joined"))
	case err != nil:
		return err
	}
	return c.reply(ctx, inv, c.tr.T("paid_ok", model.FormatMoney(p.AmountCents)))
}

func (c *Catalog) splitDef() command.Definition {
	return command.Definition{
		Description: c.tr.T("desc_split"),
		Parse:       c.eventArgParser(c.tr.T("err_unknown_event")),
		Steps: []command.StepSpec{
			c.choiceStep(fieldEventID, "ask_settle_event", c.settleableEventsSource),
		},
	}
}

func (c *Catalog) handleSplit(ctx context.Context, inv command.Invocation, values command.FieldValues) error {
	view, err := c.deps.Payments.Split(ctx, values[fieldEventID])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.reply(ctx, inv, c.tr.T("err_unknown_event"))
		}
		return err
	}
	return c.reply(ctx, inv, c.render.SplitText(view))
}
