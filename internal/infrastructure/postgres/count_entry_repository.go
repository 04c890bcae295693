package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.CountEntryRepository = (*CountEntryRepo)(nil)

// CountEntryRepo registros de doble conteo con control de versión optimista.
type CountEntryRepo struct {
	q Querier
}

// NewCountEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCountEntryRepository(q Querier) *CountEntryRepo {
	return &CountEntryRepo{q: q}
}

const entryColumns = `id, session_id, product_id, count1, count1_by, count2, count2_by, difference,
	state, current_round, final_quantity, resolution, version, created_at, updated_at`

func scanEntry(row pgx.Row) (*entity.CountEntry, error) {
	var e entity.CountEntry
	var c1, c2, diff, final decimal.NullDecimal
	var state, resolution string
	err := row.Scan(
		&e.ID, &e.SessionID, &e.ProductID, &c1, &e.Count1By, &c2, &e.Count2By, &diff,
		&state, &e.CurrentRound, &final, &resolution, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Count1, e.Count2 = decPtr(c1), decPtr(c2)
	e.Difference, e.FinalQuantity = decPtr(diff), decPtr(final)
	e.State = entity.EntryState(state)
	e.Resolution = entity.Resolution(resolution)
	return &e, nil
}

// GetForUpdate bloquea el registro del producto en la sesión; (nil, nil) si aún no existe.
func (r *CountEntryRepo) GetForUpdate(ctx context.Context, sessionID, productID string) (*entity.CountEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM count_entries
		WHERE session_id = $1 AND product_id = $2 FOR UPDATE`
	e, err := scanEntry(r.q.QueryRow(ctx, query, sessionID, productID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count entry: %w", err)
	}
	return e, nil
}

// Create inserta el registro con versión 1. UNIQUE(session_id, product_id) detecta al escritor que llegó antes.
func (r *CountEntryRepo) Create(ctx context.Context, e *entity.CountEntry) error {
	query := `INSERT INTO count_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.SessionID, e.ProductID, nullDec(e.Count1), e.Count1By, nullDec(e.Count2), e.Count2By, nullDec(e.Difference),
		string(e.State), e.CurrentRound, nullDec(e.FinalQuantity), string(e.Resolution), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "insert count entry", "registro", e.ProductID)
	}
	e.Version = 1
	return nil
}

// Update escribe el registro solo si la versión no cambió desde la lectura.
func (r *CountEntryRepo) Update(ctx context.Context, e *entity.CountEntry) error {
	query := `
		UPDATE count_entries SET count1 = $3, count1_by = $4, count2 = $5, count2_by = $6, difference = $7,
			state = $8, current_round = $9, final_quantity = $10, resolution = $11,
			version = version + 1, updated_at = $12
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		e.ID, e.Version, nullDec(e.Count1), e.Count1By, nullDec(e.Count2), e.Count2By, nullDec(e.Difference),
		string(e.State), e.CurrentRound, nullDec(e.FinalQuantity), string(e.Resolution), e.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "update count entry", "registro", e.ProductID)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ConcurrentModificationError{Resource: "registro", ID: e.ProductID}
	}
	e.Version++
	return nil
}

// ListBySession registros de la sesión ordenados por producto.
func (r *CountEntryRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CountEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM count_entries WHERE session_id = $1 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list count entries: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.CountEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan count entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
