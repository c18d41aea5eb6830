package application

import (
	"context"
	"errors"
	"time"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
)

// settleLookback is how far back /paid and /split still list events.
const settleLookback = 7 * 24 * time.Hour

// Option sources. Each binds a fresh loader per hydration; the engine calls
// the loader on every prompt render, so lists never go stale.

func (c *Catalog) openEventsSource(deps *command.Deps, _ command.Invocation) conversation.OptionLoader {
	return func(ctx context.Context) ([]conversation.Option, error) {
		evs, err := deps.Events.Upcoming(ctx)
		if err != nil {
			return nil, err
		}
		return c.eventOptions(evs), nil
	}
}

func (c *Catalog) joinedEventsSource(deps *command.Deps, inv command.Invocation) conversation.OptionLoader {
	return func(ctx context.Context) ([]conversation.Option, error) {
		ids, err := deps.Attendance.JoinedEventIDs(ctx, inv.User.ID)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		var evs []*model.Event
		for _, id := range ids {
			ev, err := deps.Events.Get(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, err
			}
			if ev.Joinable(now) {
				evs = append(evs, ev)
			}
		}
		return c.eventOptions(evs), nil
	}
}

func (c *Catalog) cancellableEventsSource(deps *command.Deps, inv command.Invocation) conversation.OptionLoader {
	return func(ctx context.Context) ([]conversation.Option, error) {
		evs, err := deps.Events.Upcoming(ctx)
		if err != nil {
			return nil, err
		}
		if !inv.User.IsAdmin {
			own := evs[:0]
			for _, ev := range evs {
				if ev.CreatedBy == inv.User.ID {
					own = append(own, ev)
				}
			}
			evs = own
		}
		return c.eventOptions(evs), nil
	}
}

func (c *Catalog) settleableEventsSource(deps *command.Deps, _ command.Invocation) conversation.OptionLoader {
	return func(ctx context.Context) ([]conversation.Option, error) {
		evs, err := deps.Events.UpcomingAndRecent(ctx, settleLookback)
		if err != nil {
			return nil, err
		}
		kept := evs[:0]
		for _, ev := range evs {
			if ev.Status != model.EventStatusCancelled {
				kept = append(kept, ev)
			}
		}
		return c.eventOptions(kept), nil
	}
}

func (c *Catalog) activeScaffoldsSource(deps *command.Deps, inv command.Invocation) conversation.OptionLoader {
	return func(ctx context.Context) ([]conversation.Option, error) {
		scs, err := deps.Scaffolds.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]conversation.Option, 0, len(scs))
		for _, sc := range scs {
			if !inv.User.IsAdmin && sc.CreatedBy != inv.User.ID {
				continue
			}
			opts = append(opts, conversation.Option{Value: sc.ID, Label: trimLabel(c.render.ScaffoldLine(sc))})
		}
		return opts, nil
	}
}

func (c *Catalog) eventOptions(evs []*model.Event) []conversation.Option {
	opts := make([]conversation.Option, 0, len(evs))
	for _, ev := range evs {
		opts = append(opts, conversation.Option{Value: ev.ID, Label: trimLabel(c.render.EventLine(ev))})
	}
	return opts
}
