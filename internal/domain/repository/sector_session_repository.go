package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// SectorSessionRepository puerto de persistencia de sesiones de conteo.
// Todas las escrituras de una sesión toman primero su fila con GetForUpdate.
type SectorSessionRepository interface {
	// Create falla con ConcurrentModificationError si ya hay una sesión activa para el mismo sector
	// (y el mismo inventario, o independiente).
	Create(ctx context.Context, session *entity.SectorSession) error
	GetByID(ctx context.Context, id string) (*entity.SectorSession, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SectorSession, error)
	Update(ctx context.Context, session *entity.SectorSession) error
	ListByEvent(ctx context.Context, eventID string) ([]*entity.SectorSession, error)
	// ListActiveByAssignee sesiones no cerradas donde el usuario es assignee1 o assignee2.
	ListActiveByAssignee(ctx context.Context, companyID, userID string) ([]*entity.SectorSession, error)
	// ExistsActive indica si hay una sesión no cerrada para el sector. eventID vacío = independiente.
	ExistsActive(ctx context.Context, companyID, eventID, sectorID string) (bool, error)
}
