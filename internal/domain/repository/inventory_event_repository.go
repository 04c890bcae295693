package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// InventoryEventRepository puerto de persistencia de inventarios completos.
type InventoryEventRepository interface {
	Create(ctx context.Context, event *entity.InventoryEvent) error
	GetByID(ctx context.Context, id string) (*entity.InventoryEvent, error)
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryEvent, error)
	Update(ctx context.Context, event *entity.InventoryEvent) error
}
