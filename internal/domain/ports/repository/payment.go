package repository

import (
	"context"

	"telegram-event-scheduler/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	ListByEvent(ctx context.Context, tx Tx, eventID string) ([]*model.Payment, error)
	SumByEvent(ctx context.Context, tx Tx, eventID string) (int64, error)
	SumAll(ctx context.Context, tx Tx) (int64, error)
}
