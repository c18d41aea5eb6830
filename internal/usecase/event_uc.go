package usecase

import (
	"context"
	"fmt"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
	"telegram-event-scheduler/internal/infra/logging"
	"telegram-event-scheduler/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ EventUseCase = (*eventUC)(nil)

// CreateEventInput carries everything needed for a one-off event. ScaffoldID
// is set only when the scheduler materializes a recurring template.
type CreateEventInput struct {
	Title      string
	Location   string
	StartsAt   time.Time
	Duration   time.Duration
	Capacity   int
	CostCents  int64
	CreatedBy  string
	ScaffoldID *string
}

type EventUseCase interface {
	Create(ctx context.Context, in CreateEventInput) (*model.Event, error)
	Get(ctx context.Context, id string) (*model.Event, error)
	// Upcoming lists scheduled events that have not started yet, soonest first.
	Upcoming(ctx context.Context) ([]*model.Event, error)
	// UpcomingAndRecent additionally includes events that started within the
	// lookback window, for late payment recording and splitting.
	UpcomingAndRecent(ctx context.Context, lookback time.Duration) ([]*model.Event, error)
	// Cancel flips the event to cancelled. Only the creator or an admin may.
	Cancel(ctx context.Context, eventID, requesterID string, requesterAdmin bool) (*model.Event, error)
	// FinishPast marks scheduled events that already ended as finished.
	FinishPast(ctx context.Context) (int, error)
}

type eventUC struct {
	events repository.EventRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewEventUseCase(events repository.EventRepository, tm repository.TransactionManager, logger *zerolog.Logger) *eventUC {
	return &eventUC{events: events, tm: tm, log: logger}
}

func (e *eventUC) Create(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	defer logging.TraceDuration(e.log, "EventUC.Create")()

	ev, err := model.NewEvent("", in.Title, in.Location, in.StartsAt, in.Duration, in.Capacity, in.CostCents, in.CreatedBy)
	if err != nil {
		return nil, err
	}
	ev.ScaffoldID = in.ScaffoldID
	if err := e.events.Save(ctx, repository.NoTX, ev); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	origin := "manual"
	if in.ScaffoldID != nil {
		origin = "scaffold"
	}
	metrics.IncEventCreated(origin)
	e.log.Info().Str("event_id", ev.ID).Str("title", ev.Title).Time("starts_at", ev.StartsAt).Msg("event created")
	return ev, nil
}

func (e *eventUC) Get(ctx context.Context, id string) (*model.Event, error) {
	defer logging.TraceDuration(e.log, "EventUC.Get")()
	return e.events.FindByID(ctx, repository.NoTX, id)
}

func (e *eventUC) Upcoming(ctx context.Context) ([]*model.Event, error) {
	defer logging.TraceDuration(e.log, "EventUC.Upcoming")()
	return e.events.List(ctx, repository.NoTX, repository.EventFilter{
		From:   time.Now(),
		Status: model.EventStatusScheduled,
	})
}

func (e *eventUC) UpcomingAndRecent(ctx context.Context, lookback time.Duration) ([]*model.Event, error) {
	defer logging.TraceDuration(e.log, "EventUC.UpcomingAndRecent")()
	if lookback < 0 {
		lookback = 0
	}
	return e.events.List(ctx, repository.NoTX, repository.EventFilter{
		From: time.Now().Add(-lookback),
	})
}

func (e *eventUC) Cancel(ctx context.Context, eventID, requesterID string, requesterAdmin bool) (*model.Event, error) {
	defer logging.TraceDuration(e.log, "EventUC.Cancel")()

	var cancelled *model.Event
	err := e.tm.WithTx(ctx, txDefault, func(ctx context.Context, tx repository.Tx) error {
		ev, err := e.events.FindByID(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if ev.Status == model.EventStatusCancelled {
			return domain.ErrEventCancelled
		}
		if !requesterAdmin && ev.CreatedBy != requesterID {
			return domain.ErrNotAllowed
		}
		ev.Status = model.EventStatusCancelled
		if err := e.events.Save(ctx, tx, ev); err != nil {
			return err
		}
		cancelled = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncEventCancelled()
	e.log.Info().Str("event_id", eventID).Str("by", requesterID).Msg("event cancelled")
	return cancelled, nil
}

func (e *eventUC) FinishPast(ctx context.Context) (int, error) {
	defer logging.TraceDuration(e.log, "EventUC.FinishPast")()
	n, err := e.events.FinishBefore(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddEventsFinished(n)
	}
	return n, nil
}
