package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fable-server/internal/interfaces"
)

var _ interfaces.TxManager = (*pgxTxManager)(nil)

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager backed by a pgx pool.
func NewTxManager(pool *pgxpool.Pool) interfaces.TxManager {
	return &pgxTxManager{pool: pool}
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (m *pgxTxManager) WithTx(ctx context.Context, fn func(q interfaces.DBTX) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.Background())
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}
