package repository

import (
	"context"

	"telegram-event-scheduler/internal/domain/model"
)

// -----------------------------
// Participants
// -----------------------------

type ParticipantRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Participant) error
	Find(ctx context.Context, tx Tx, eventID, userID string) (*model.Participant, error)
	Delete(ctx context.Context, tx Tx, eventID, userID string) error
	// ListByEvent returns the full roster ordered by join time.
	ListByEvent(ctx context.Context, tx Tx, eventID string) ([]*model.Participant, error)
	CountByStatus(ctx context.Context, tx Tx, eventID string, status model.ParticipantStatus) (int, error)
	// FirstWaitlisted returns the earliest waitlisted entry or ErrNotFound.
	FirstWaitlisted(ctx context.Context, tx Tx, eventID string) (*model.Participant, error)
	// ListEventIDsByUser returns ids of events where the user participates.
	ListEventIDsByUser(ctx context.Context, tx Tx, userID string) ([]string, error)
}
