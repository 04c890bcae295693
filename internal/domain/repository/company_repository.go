package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// CompanyRepository puerto de lectura de empresas (datos maestros, los administra otro sistema).
// GetByID devuelve (nil, nil) si no existe.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
