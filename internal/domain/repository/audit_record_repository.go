package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// AuditRecordRepository bitácora de ajustes de stock generados por el cierre de sesiones. Solo inserción.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.AuditRecord, error)
}
