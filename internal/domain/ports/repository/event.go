package repository

import (
	"context"
	"time"

	"telegram-event-scheduler/internal/domain/model"
)

// -----------------------------
// Events
// -----------------------------

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	From       time.Time
	Until      time.Time
	Status     model.EventStatus
	ScaffoldID string
	CreatedBy  string
}

type EventRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Event) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Event, error)
	List(ctx context.Context, tx Tx, f EventFilter) ([]*model.Event, error)
	// ExistsForOccurrence reports whether the scaffold already has an event
	// at the given start, cancelled ones included.
	ExistsForOccurrence(ctx context.Context, tx Tx, scaffoldID string, startsAt time.Time) (bool, error)
	// FinishBefore flips scheduled events that ended before the cutoff to
	// finished and returns how many rows changed.
	FinishBefore(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}
