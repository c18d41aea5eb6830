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

var _ repository.ParticipantRepository = (*participantRepo)(nil)

type participantRepo struct {
	pool *pgxpool.Pool
}

func NewParticipantRepo(pool *pgxpool.Pool) *participantRepo {
	return &participantRepo{pool: pool}
}

func (r *participantRepo) Save(ctx context.Context, tx repository.Tx, p *model.Participant) error {
	const q = `
INSERT INTO participants (event_id, user_id, status, joined_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (event_id, user_id) DO UPDATE SET status=$3;`
	_, err := executor(r.pool, tx).Exec(ctx, q, p.EventID, p.UserID, p.Status, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("save participant: %w", err)
	}
	return nil
}

func (r *participantRepo) Find(ctx context.Context, tx repository.Tx, eventID, userID string) (*model.Participant, error) {
	const q = `
SELECT event_id, user_id, status, joined_at
  FROM participants WHERE event_id=$1 AND user_id=$2;`
	return scanParticipant(executor(r.pool, tx).QueryRow(ctx, q, eventID, userID))
}

func (r *participantRepo) Delete(ctx context.Context, tx repository.Tx, eventID, userID string) error {
	const q = `DELETE FROM participants WHERE event_id=$1 AND user_id=$2;`
	tag, err := executor(r.pool, tx).Exec(ctx, q, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.Participant, error) {
	const q = `
SELECT event_id, user_id, status, joined_at
  FROM participants WHERE event_id=$1
 ORDER BY joined_at ASC;`
	rows, err := executor(r.pool, tx).Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *participantRepo) CountByStatus(ctx context.Context, tx repository.Tx, eventID string, status model.ParticipantStatus) (int, error) {
	const q = `SELECT COUNT(*) FROM participants WHERE event_id=$1 AND status=$2;`
	var n int
	if err := executor(r.pool, tx).QueryRow(ctx, q, eventID, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func (r *participantRepo) FirstWaitlisted(ctx context.Context, tx repository.Tx, eventID string) (*model.Participant, error) {
	const q = `
SELECT event_id, user_id, status, joined_at
  FROM participants WHERE event_id=$1 AND status=$2
 ORDER BY joined_at ASC
 LIMIT 1;`
	return scanParticipant(executor(r.pool, tx).QueryRow(ctx, q, eventID, model.ParticipantStatusWaitlisted))
}

func (r *participantRepo) ListEventIDsByUser(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	const q = `SELECT event_id FROM participants WHERE user_id=$1 ORDER BY joined_at ASC;`
	rows, err := executor(r.pool, tx).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list event ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var p model.Participant
	if err := row.Scan(&p.EventID, &p.UserID, &p.Status, &p.JoinedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}
