package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.RecountRoundRepository = (*RecountRoundRepo)(nil)

// RecountRoundRepo rondas de reconteo y sus envíos. Los envíos retractados se conservan.
type RecountRoundRepo struct {
	q Querier
}

// NewRecountRoundRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecountRoundRepository(q Querier) *RecountRoundRepo {
	return &RecountRoundRepo{q: q}
}

const roundColumns = `id, session_id, product_id, round_number, opened_by, previous_count1, previous_count2,
	status, resolved_quantity, created_at, updated_at`

const submissionColumns = `id, round_id, session_id, product_id, round_number, user_id, slot, quantity,
	retracted, retracted_by, retracted_at, created_at`

func scanRound(row pgx.Row) (*entity.RecountRound, error) {
	var rd entity.RecountRound
	var prev1, prev2, resolved decimal.NullDecimal
	var status string
	err := row.Scan(
		&rd.ID, &rd.SessionID, &rd.ProductID, &rd.RoundNumber, &rd.OpenedBy, &prev1, &prev2,
		&status, &resolved, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rd.PreviousCount1, rd.PreviousCount2 = decPtr(prev1), decPtr(prev2)
	rd.ResolvedQuantity = decPtr(resolved)
	rd.Status = entity.RoundStatus(status)
	return &rd, nil
}

func scanSubmission(row pgx.Row) (*entity.RecountSubmission, error) {
	var s entity.RecountSubmission
	var slot int
	err := row.Scan(
		&s.ID, &s.RoundID, &s.SessionID, &s.ProductID, &s.RoundNumber, &s.UserID, &slot, &s.Quantity,
		&s.Retracted, &s.RetractedBy, &s.RetractedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Slot = entity.CountSlot(slot)
	return &s, nil
}

// MaxRoundNumber último número de ronda de la sesión; 0 si nunca hubo reconteo.
func (r *RecountRoundRepo) MaxRoundNumber(ctx context.Context, sessionID string) (int, error) {
	var max int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(round_number), 0) FROM recount_rounds WHERE session_id = $1`, sessionID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max round number: %w", err)
	}
	return max, nil
}

// CreateRound UNIQUE(session_id, round_number, product_id) impide reabrir dos veces el mismo producto.
func (r *RecountRoundRepo) CreateRound(ctx context.Context, rd *entity.RecountRound) error {
	query := `INSERT INTO recount_rounds (` + roundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		rd.ID, rd.SessionID, rd.ProductID, rd.RoundNumber, rd.OpenedBy, nullDec(rd.PreviousCount1), nullDec(rd.PreviousCount2),
		string(rd.Status), nullDec(rd.ResolvedQuantity), rd.CreatedAt, rd.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "insert recount round", "ronda", rd.ProductID)
	}
	return nil
}

// GetRound devuelve (nil, nil) si el producto no fue reabierto en esa ronda.
func (r *RecountRoundRepo) GetRound(ctx context.Context, sessionID string, roundNumber int, productID string) (*entity.RecountRound, error) {
	query := `SELECT ` + roundColumns + ` FROM recount_rounds
		WHERE session_id = $1 AND round_number = $2 AND product_id = $3`
	rd, err := scanRound(r.q.QueryRow(ctx, query, sessionID, roundNumber, productID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recount round: %w", err)
	}
	return rd, nil
}

// ListRounds rondas de la sesión por número y producto.
func (r *RecountRoundRepo) ListRounds(ctx context.Context, sessionID string) ([]*entity.RecountRound, error) {
	query := `SELECT ` + roundColumns + ` FROM recount_rounds
		WHERE session_id = $1 ORDER BY round_number, product_id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list recount rounds: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.RecountRound, 0)
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recount round: %w", err)
		}
		list = append(list, rd)
	}
	return list, rows.Err()
}

// UpdateRound guarda el resultado de la ronda.
func (r *RecountRoundRepo) UpdateRound(ctx context.Context, rd *entity.RecountRound) error {
	query := `UPDATE recount_rounds SET status = $2, resolved_quantity = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, rd.ID, string(rd.Status), nullDec(rd.ResolvedQuantity), rd.UpdatedAt)
	if err != nil {
		return writeError(err, "update recount round", "ronda", rd.ID)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateSubmission inserta un reconteo; seq conserva el orden de llegada.
func (r *RecountRoundRepo) CreateSubmission(ctx context.Context, s *entity.RecountSubmission) error {
	query := `INSERT INTO recount_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.RoundID, s.SessionID, s.ProductID, s.RoundNumber, s.UserID, int(s.Slot), s.Quantity,
		s.Retracted, s.RetractedBy, s.RetractedAt, s.CreatedAt,
	)
	if err != nil {
		return writeError(err, "insert recount submission", "reconteo", s.ID)
	}
	return nil
}

// GetSubmission obtiene un reconteo por ID.
func (r *RecountRoundRepo) GetSubmission(ctx context.Context, id string) (*entity.RecountSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM recount_submissions WHERE id = $1`
	s, err := scanSubmission(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recount submission: %w", err)
	}
	return s, nil
}

// ListSubmissions envíos de la ronda en orden de llegada, incluidos los retractados.
func (r *RecountRoundRepo) ListSubmissions(ctx context.Context, roundID string) ([]*entity.RecountSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM recount_submissions WHERE round_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("list recount submissions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.RecountSubmission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recount submission: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpdateSubmission solo la lápida es mutable.
func (r *RecountRoundRepo) UpdateSubmission(ctx context.Context, s *entity.RecountSubmission) error {
	query := `UPDATE recount_submissions SET retracted = $2, retracted_by = $3, retracted_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Retracted, s.RetractedBy, s.RetractedAt)
	if err != nil {
		return writeError(err, "update recount submission", "reconteo", s.ID)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
