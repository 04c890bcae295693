package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// StockRepository puerto del libro de stock base por sector+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// ListBySector devuelve los productos con stock base en el sector (definen el alcance de la sesión).
	ListBySector(ctx context.Context, companyID, sectorID string) ([]*entity.StockBaseline, error)
	// Get devuelve (nil, nil) si el producto no tiene stock base en el sector.
	Get(ctx context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error)
	Upsert(ctx context.Context, stock *entity.StockBaseline) error
}
