package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the querier abstraction satisfied by both *pgxpool.Pool and
// pgx.Tx, so repositories can run standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager runs a function inside a database transaction, committing on
// success and rolling back on error or panic.
type TxManager interface {
	WithTx(ctx context.Context, fn func(q DBTX) error) error
}
