package usecase

import "github.com/jackc/pgx/v4"

var (
	// txDefault is for ordinary read-modify-write transactions.
	txDefault = pgx.TxOptions{}
	// txSerializable guards check-then-insert races on business keys.
	txSerializable = pgx.TxOptions{IsoLevel: pgx.Serializable}
)
