package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// CountEntryRepository puerto de los registros de doble conteo (uno por sesión+producto).
type CountEntryRepository interface {
	// GetForUpdate devuelve (nil, nil) si el producto aún no tiene registro en la sesión.
	GetForUpdate(ctx context.Context, sessionID, productID string) (*entity.CountEntry, error)
	// Create falla con ConcurrentModificationError si otro escritor creó el registro antes.
	Create(ctx context.Context, entry *entity.CountEntry) error
	// Update compara Version y la incrementa; si no coincide devuelve ConcurrentModificationError.
	Update(ctx context.Context, entry *entity.CountEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CountEntry, error)
}
