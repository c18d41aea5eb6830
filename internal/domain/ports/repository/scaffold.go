package repository

import (
	"context"

	"telegram-event-scheduler/internal/domain/model"
)

// -----------------------------
// Recurring templates
// -----------------------------

type ScaffoldRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Scaffold) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Scaffold, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Scaffold, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Scaffold, error)
}
