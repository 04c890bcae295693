package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// SectorRepository puerto de lectura de sectores (zonas físicas de una empresa).
type SectorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Sector, error)
}
