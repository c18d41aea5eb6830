package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
)

var _ repository.EventRepository = (*eventRepo)(nil)

type eventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *eventRepo {
	return &eventRepo{pool: pool}
}

const eventColumns = `id, scaffold_id, title, location, starts_at, duration_secs, capacity, cost_cents, status, created_by, created_at`

func (r *eventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	const q = `
INSERT INTO events (
  id, scaffold_id, title, location, starts_at, duration_secs, capacity, cost_cents, status, created_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  title=$3, location=$4, starts_at=$5, duration_secs=$6, capacity=$7, cost_cents=$8, status=$9;`
	_, err := executor(r.pool, tx).Exec(ctx, q,
		e.ID, e.ScaffoldID, e.Title, e.Location, e.StartsAt, int64(e.Duration/time.Second),
		e.Capacity, e.CostCents, e.Status, e.CreatedBy, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id=$1;`
	return scanEvent(executor(r.pool, tx).QueryRow(ctx, q, id))
}

// List applies the filter's non-zero fields and orders by start time.
func (r *eventRepo) List(ctx context.Context, tx repository.Tx, f repository.EventFilter) ([]*model.Event, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.From.IsZero() {
		conds = append(conds, "starts_at >= "+arg(f.From))
	}
	if !f.Until.IsZero() {
		conds = append(conds, "starts_at <= "+arg(f.Until))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.ScaffoldID != "" {
		conds = append(conds, "scaffold_id = "+arg(f.ScaffoldID))
	}
	if f.CreatedBy != "" {
		conds = append(conds, "created_by = "+arg(f.CreatedBy))
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY starts_at ASC;"

	rows, err := executor(r.pool, tx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) ExistsForOccurrence(ctx context.Context, tx repository.Tx, scaffoldID string, startsAt time.Time) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM events WHERE scaffold_id=$1 AND starts_at=$2);`
	var exists bool
	if err := executor(r.pool, tx).QueryRow(ctx, q, scaffoldID, startsAt).Scan(&exists); err != nil {
		return false, fmt.Errorf("occurrence check: %w", err)
	}
	return exists, nil
}

func (r *eventRepo) FinishBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `
UPDATE events SET status=$1
 WHERE status=$2 AND starts_at + make_interval(secs => duration_secs) < $3;`
	tag, err := executor(r.pool, tx).Exec(ctx, q, model.EventStatusFinished, model.EventStatusScheduled, cutoff)
	if err != nil {
		return 0, fmt.Errorf("finish events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e    model.Event
		secs int64
	)
	err := row.Scan(&e.ID, &e.ScaffoldID, &e.Title, &e.Location, &e.StartsAt, &secs,
		&e.Capacity, &e.CostCents, &e.Status, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	e.Duration = time.Duration(secs) * time.Second
	return &e, nil
}
