package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.SectorSessionRepository = (*SectorSessionRepo)(nil)

// SectorSessionRepo persistencia de sesiones de conteo por sector.
type SectorSessionRepo struct {
	q Querier
}

// NewSectorSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSectorSessionRepository(q Querier) *SectorSessionRepo {
	return &SectorSessionRepo{q: q}
}

const sessionColumns = `id, company_id, event_id, kind, sector_id, state, assignee1, assignee2,
	created_by, closed_by, started_at, closed_at, created_at, updated_at`

func scanSession(row pgx.Row) (*entity.SectorSession, error) {
	var s entity.SectorSession
	var eventID, assignee1, assignee2 *string
	var kind, state string
	err := row.Scan(
		&s.ID, &s.CompanyID, &eventID, &kind, &s.SectorID, &state, &assignee1, &assignee2,
		&s.CreatedBy, &s.ClosedBy, &s.StartedAt, &s.ClosedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.EventID = textOrEmpty(eventID)
	s.Assignee1 = textOrEmpty(assignee1)
	s.Assignee2 = textOrEmpty(assignee2)
	s.Kind = entity.SessionKind(kind)
	s.State = entity.SessionState(state)
	return &s, nil
}

// Create persiste la sesión. El índice parcial ux_sector_sessions_active impide dos sesiones
// abiertas para el mismo sector; la violación se reporta como modificación concurrente.
func (r *SectorSessionRepo) Create(ctx context.Context, s *entity.SectorSession) error {
	query := `INSERT INTO sector_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, nullText(s.EventID), string(s.Kind), s.SectorID, string(s.State), nullText(s.Assignee1), nullText(s.Assignee2),
		s.CreatedBy, s.ClosedBy, s.StartedAt, s.ClosedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "insert sector session", "sesión", s.SectorID)
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *SectorSessionRepo) GetByID(ctx context.Context, id string) (*entity.SectorSession, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la sesión y bloquea la fila: serializa a todos los escritores de la sesión.
func (r *SectorSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SectorSession, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SectorSessionRepo) get(ctx context.Context, id, lock string) (*entity.SectorSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sector_sessions WHERE id = $1` + lock
	s, err := scanSession(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector session: %w", err)
	}
	return s, nil
}

// Update guarda estado, contadores y tiempos.
func (r *SectorSessionRepo) Update(ctx context.Context, s *entity.SectorSession) error {
	query := `
		UPDATE sector_sessions SET state = $2, assignee1 = $3, assignee2 = $4, closed_by = $5,
			started_at = $6, closed_at = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, string(s.State), nullText(s.Assignee1), nullText(s.Assignee2), s.ClosedBy, s.StartedAt, s.ClosedAt, s.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "update sector session", "sesión", s.ID)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByEvent sesiones del inventario en orden de creación.
func (r *SectorSessionRepo) ListByEvent(ctx context.Context, eventID string) ([]*entity.SectorSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sector_sessions WHERE event_id = $1 ORDER BY seq`
	return r.list(ctx, query, eventID)
}

// ListActiveByAssignee sesiones abiertas donde el usuario es uno de los dos contadores.
func (r *SectorSessionRepo) ListActiveByAssignee(ctx context.Context, companyID, userID string) ([]*entity.SectorSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sector_sessions
		WHERE company_id = $1 AND state <> 'CLOSED' AND (assignee1 = $2 OR assignee2 = $2)
		ORDER BY seq`
	return r.list(ctx, query, companyID, userID)
}

// ExistsActive indica si hay una sesión abierta para el sector. eventID vacío = independiente.
func (r *SectorSessionRepo) ExistsActive(ctx context.Context, companyID, eventID, sectorID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM sector_sessions
		WHERE company_id = $1 AND COALESCE(event_id, '') = $2 AND sector_id = $3 AND state <> 'CLOSED')`
	var exists bool
	if err := r.q.QueryRow(ctx, query, companyID, eventID, sectorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists active session: %w", err)
	}
	return exists, nil
}

func (r *SectorSessionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SectorSession, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sector sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.SectorSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sector session: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
