package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
)

var _ repository.ScaffoldRepository = (*scaffoldRepo)(nil)

type scaffoldRepo struct {
	pool *pgxpool.Pool
}

func NewScaffoldRepo(pool *pgxpool.Pool) *scaffoldRepo {
	return &scaffoldRepo{pool: pool}
}

const scaffoldColumns = `id, title, location, weekday, start_clock, duration_secs, capacity, cost_cents, lead_days, active, created_by, created_at`

func (r *scaffoldRepo) Save(ctx context.Context, tx repository.Tx, s *model.Scaffold) error {
	const q = `
INSERT INTO scaffolds (
  id, title, location, weekday, start_clock, duration_secs, capacity, cost_cents, lead_days, active, created_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  title=$2, location=$3, weekday=$4, start_clock=$5, duration_secs=$6,
  capacity=$7, cost_cents=$8, lead_days=$9, active=$10;`
	_, err := executor(r.pool, tx).Exec(ctx, q,
		s.ID, s.Title, s.Location, int(s.Weekday), s.StartClock, int64(s.Duration/time.Second),
		s.Capacity, s.CostCents, s.LeadDays, s.Active, s.CreatedBy, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save scaffold: %w", err)
	}
	return nil
}

func (r *scaffoldRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scaffold, error) {
	q := `SELECT ` + scaffoldColumns + ` FROM scaffolds WHERE id=$1;`
	return scanScaffold(executor(r.pool, tx).QueryRow(ctx, q, id))
}

func (r *scaffoldRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	q := `SELECT ` + scaffoldColumns + ` FROM scaffolds WHERE active ORDER BY weekday, start_clock;`
	return r.list(ctx, tx, q)
}

func (r *scaffoldRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scaffold, error) {
	q := `SELECT ` + scaffoldColumns + ` FROM scaffolds ORDER BY weekday, start_clock;`
	return r.list(ctx, tx, q)
}

func (r *scaffoldRepo) list(ctx context.Context, tx repository.Tx, q string) ([]*model.Scaffold, error) {
	rows, err := executor(r.pool, tx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list scaffolds: %w", err)
	}
	defer rows.Close()

	var out []*model.Scaffold
	for rows.Next() {
		s, err := scanScaffold(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanScaffold(row pgx.Row) (*model.Scaffold, error) {
	var (
		s       model.Scaffold
		weekday int
		secs    int64
	)
	err := row.Scan(&s.ID, &s.Title, &s.Location, &weekday, &s.StartClock, &secs,
		&s.Capacity, &s.CostCents, &s.LeadDays, &s.Active, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.Weekday = time.Weekday(weekday)
	s.Duration = time.Duration(secs) * time.Second
	return &s, nil
}
