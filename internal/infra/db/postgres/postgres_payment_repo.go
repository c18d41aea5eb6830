package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, event_id, payer_id, amount_cents, note, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := executor(r.pool, tx).Exec(ctx, q, p.ID, p.EventID, p.PayerID, p.AmountCents, p.Note, p.RecordedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (r *paymentRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.Payment, error) {
	const q = `
SELECT id, event_id, payer_id, amount_cents, note, recorded_at
  FROM payments WHERE event_id=$1
 ORDER BY recorded_at ASC;`
	rows, err := executor(r.pool, tx).Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentRepo) SumByEvent(ctx context.Context, tx repository.Tx, eventID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE event_id=$1;`
	var sum int64
	if err := executor(r.pool, tx).QueryRow(ctx, q, eventID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

func (r *paymentRepo) SumAll(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_cents), 0) FROM payments;`
	var sum int64
	if err := executor(r.pool, tx).QueryRow(ctx, q).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	if err := row.Scan(&p.ID, &p.EventID, &p.PayerID, &p.AmountCents, &p.Note, &p.RecordedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}
