package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
)

// Ensure TxRunner implements conteo.TxRunner.
var _ conteo.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un fallo de serialización al confirmar se reporta como modificación concurrente para que el caso de uso reintente.
func (r *TxRunner) Run(ctx context.Context, fn func(repos conteo.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := conteo.TxRepos{
		Events:   NewInventoryEventRepository(tx),
		Sessions: NewSectorSessionRepository(tx),
		Entries:  NewCountEntryRepository(tx),
		Rounds:   NewRecountRoundRepository(tx),
		Stock:    NewStockRepository(tx),
		Audit:    NewAuditRecordRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return writeError(err, "commit transaction", "transacción", "")
	}
	return nil
}
