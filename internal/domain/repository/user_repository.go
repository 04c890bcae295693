package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// UserRepository puerto de lectura de usuarios. GetByID devuelve (nil, nil) si no existe.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
