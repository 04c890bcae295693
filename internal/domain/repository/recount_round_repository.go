package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// RecountRoundRepository puerto de rondas de reconteo y de sus envíos.
// Los envíos retractados nunca se borran.
type RecountRoundRepository interface {
	// MaxRoundNumber último número de ronda de la sesión; 0 si nunca hubo reconteo.
	MaxRoundNumber(ctx context.Context, sessionID string) (int, error)
	CreateRound(ctx context.Context, round *entity.RecountRound) error
	// GetRound devuelve (nil, nil) si el producto no fue reabierto en esa ronda.
	GetRound(ctx context.Context, sessionID string, roundNumber int, productID string) (*entity.RecountRound, error)
	ListRounds(ctx context.Context, sessionID string) ([]*entity.RecountRound, error)
	UpdateRound(ctx context.Context, round *entity.RecountRound) error

	CreateSubmission(ctx context.Context, sub *entity.RecountSubmission) error
	GetSubmission(ctx context.Context, id string) (*entity.RecountSubmission, error)
	// ListSubmissions envíos de la ronda en orden de creación, incluidos los retractados.
	ListSubmissions(ctx context.Context, roundID string) ([]*entity.RecountSubmission, error)
	UpdateSubmission(ctx context.Context, sub *entity.RecountSubmission) error
}
