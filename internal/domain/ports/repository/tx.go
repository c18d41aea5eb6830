package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX marks the non-transactional path when calling repositories directly.
var NoTX Tx

// TransactionManager provides a thin abstraction to execute a function within a
// database transaction, passing the underlying transaction handle via `tx`.
//
// Keeps use-case interfaces clean: no transaction types leak out, repository
// methods accept the opaque handle and detect a live transaction on the
// implementation side (SELECT ... FOR UPDATE, tx-bound Exec/Query).
// Repositories MUST gracefully accept a nil handle (non-transactional path).
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		e, err := events.FindByID(ctx, tx, id)
//		...
//		return err
//	})
//
// Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
