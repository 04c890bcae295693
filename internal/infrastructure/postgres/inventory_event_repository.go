package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.InventoryEventRepository = (*InventoryEventRepo)(nil)

// InventoryEventRepo persistencia de inventarios completos.
type InventoryEventRepo struct {
	q Querier
}

// NewInventoryEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryEventRepository(q Querier) *InventoryEventRepo {
	return &InventoryEventRepo{q: q}
}

const eventColumns = `id, company_id, admin_id, name, state, started_at, closed_at, created_at, updated_at`

// Create persiste un inventario nuevo.
func (r *InventoryEventRepo) Create(ctx context.Context, e *entity.InventoryEvent) error {
	query := `INSERT INTO inventory_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.AdminID, e.Name, string(e.State), e.StartedAt, e.ClosedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "insert inventory event", "inventario", e.ID)
	}
	return nil
}

// GetByID obtiene un inventario por ID.
func (r *InventoryEventRepo) GetByID(ctx context.Context, id string) (*entity.InventoryEvent, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene el inventario y bloquea la fila.
func (r *InventoryEventRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryEvent, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InventoryEventRepo) get(ctx context.Context, id, lock string) (*entity.InventoryEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM inventory_events WHERE id = $1` + lock
	var e entity.InventoryEvent
	var state string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CompanyID, &e.AdminID, &e.Name, &state, &e.StartedAt, &e.ClosedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory event: %w", err)
	}
	e.State = entity.EventState(state)
	return &e, nil
}

// Update guarda el último estado derivado y la fecha de cierre.
func (r *InventoryEventRepo) Update(ctx context.Context, e *entity.InventoryEvent) error {
	query := `
		UPDATE inventory_events SET name = $2, state = $3, closed_at = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, e.ID, e.Name, string(e.State), e.ClosedAt, e.UpdatedAt)
	if err != nil {
		return writeError(err, "update inventory event", "inventario", e.ID)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
