package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, telegram_id, username, first_name, last_name, registered_at, last_active_at, is_admin
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
) ON CONFLICT (id) DO UPDATE SET
  telegram_id=$2, username=$3, first_name=$4, last_name=$5, last_active_at=$7, is_admin=$8;`
	_, err := executor(r.pool, tx).Exec(ctx, q, u.ID, u.TelegramID, u.Username, u.FirstName, u.LastName, u.RegisteredAt, u.LastActiveAt, u.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const q = `
SELECT id, telegram_id, username, first_name, last_name, registered_at, last_active_at, is_admin
  FROM users WHERE telegram_id=$1;`
	return r.scanOne(executor(r.pool, tx).QueryRow(ctx, q, tgID))
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, telegram_id, username, first_name, last_name, registered_at, last_active_at, is_admin
  FROM users WHERE id=$1;`
	return r.scanOne(executor(r.pool, tx).QueryRow(ctx, q, id))
}

func (r *userRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, telegram_id, username, first_name, last_name, registered_at, last_active_at, is_admin
  FROM users WHERE id = ANY($1);`
	rows, err := executor(r.pool, tx).Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.RegisteredAt, &u.LastActiveAt, &u.IsAdmin); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	var n int
	if err := executor(r.pool, tx).QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE last_active_at IS NULL OR last_active_at < $1;`
	var n int
	if err := executor(r.pool, tx).QueryRow(ctx, q, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inactive: %w", err)
	}
	return n, nil
}

func (r *userRepo) scanOne(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.RegisteredAt, &u.LastActiveAt, &u.IsAdmin); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}
