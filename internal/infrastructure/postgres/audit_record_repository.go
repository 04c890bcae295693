package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.AuditRecordRepository = (*AuditRecordRepo)(nil)

// AuditRecordRepo bitácora de ajustes; solo inserción.
type AuditRecordRepo struct {
	q Querier
}

// NewAuditRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRecordRepository(q Querier) *AuditRecordRepo {
	return &AuditRecordRepo{q: q}
}

const auditColumns = `id, company_id, session_id, event_id, sector_id, product_id,
	previous_quantity, new_quantity, delta, resolution, user_id, created_at`

// Create inserta un registro de ajuste.
func (r *AuditRecordRepo) Create(ctx context.Context, a *entity.AuditRecord) error {
	query := `INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.SessionID, nullText(a.EventID), a.SectorID, a.ProductID,
		a.PreviousQuantity, a.NewQuantity, a.Delta, string(a.Resolution), a.UserID, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("audit record duplicado para %s/%s: %w", a.SessionID, a.ProductID, err)
		}
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListBySession registros de la sesión en orden de inserción.
func (r *AuditRecordRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_records WHERE session_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.AuditRecord, 0)
	for rows.Next() {
		var a entity.AuditRecord
		var eventID *string
		var resolution string
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.SessionID, &eventID, &a.SectorID, &a.ProductID,
			&a.PreviousQuantity, &a.NewQuantity, &a.Delta, &resolution, &a.UserID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		a.EventID = textOrEmpty(eventID)
		a.Resolution = entity.Resolution(resolution)
		list = append(list, &a)
	}
	return list, rows.Err()
}
