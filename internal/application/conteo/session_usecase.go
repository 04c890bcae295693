package conteo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// SessionUseCase ciclo de vida de la sesión de conteo de un sector.
type SessionUseCase struct {
	base
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(d Deps) *SessionUseCase {
	return &SessionUseCase{base: newBase(d)}
}

// CreateStandalone abre un conteo independiente de un solo sector (sin inventario completo).
// Solo puede haber una sesión no cerrada por sector.
func (uc *SessionUseCase) CreateStandalone(ctx context.Context, companyID, adminID string, in dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := uc.checkCompany(ctx, companyID); err != nil {
		return nil, err
	}
	if err := uc.checkSector(ctx, companyID, in.SectorID); err != nil {
		return nil, err
	}
	if err := uc.checkAssignees(ctx, companyID, in.Assignee1, in.Assignee2); err != nil {
		return nil, err
	}

	now := uc.now()
	s := &entity.SectorSession{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Kind:      entity.SessionKindStandalone,
		SectorID:  in.SectorID,
		State:     entity.SessionStatePending,
		Assignee1: in.Assignee1,
		Assignee2: in.Assignee2,
		CreatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		busy, err := r.Sessions.ExistsActive(ctx, companyID, "", in.SectorID)
		if err != nil {
			return err
		}
		if busy {
			return fmt.Errorf("%w: el sector %s ya tiene un conteo abierto", domain.ErrConflict, in.SectorID)
		}
		return r.Sessions.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("session_id", s.ID).Str("sector_id", s.SectorID).Msg("conteo independiente creado")
	out := toSessionResponse(s)
	return &out, nil
}

// AssignCounters cambia los contadores de una sesión. Solo mientras nadie ha contado (PENDING).
func (uc *SessionUseCase) AssignCounters(ctx context.Context, companyID, adminID, sessionID string, in dto.AssignCountersRequest) (*dto.SessionResponse, error) {
	if err := uc.checkAssignees(ctx, companyID, in.Assignee1, in.Assignee2); err != nil {
		return nil, err
	}
	var out dto.SessionResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		s, err := lockSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		if err := requireOpen(s); err != nil {
			return err
		}
		changes := (s.Assignee1 != "" && s.Assignee1 != in.Assignee1) || (s.Assignee2 != "" && s.Assignee2 != in.Assignee2)
		if changes && s.State != entity.SessionStatePending {
			return fmt.Errorf("%w: los contadores solo se cambian antes del primer conteo", domain.ErrInvalidState)
		}
		s.Assignee1 = in.Assignee1
		s.Assignee2 = in.Assignee2
		s.UpdatedAt = uc.now()
		if err := r.Sessions.Update(ctx, s); err != nil {
			return err
		}
		out = toSessionResponse(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("session_id", sessionID).Str("admin_id", adminID).Msg("contadores asignados")
	return &out, nil
}

// ConfirmDifferences el administrador revisa las diferencias y confirma que requieren reconteo
// (AWAITING_VERIFICATION -> HAS_DIFFERENCES).
func (uc *SessionUseCase) ConfirmDifferences(ctx context.Context, companyID, adminID, sessionID string) (*dto.SessionResponse, error) {
	var (
		out dto.SessionResponse
		j   journal
	)
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		j.reset()
		s, err := lockSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		if err := requireOpen(s); err != nil {
			return err
		}
		now := uc.now()
		if err := j.transition(s, entity.SessionStateHasDifferences, adminID, now); err != nil {
			return err
		}
		if err := saveSession(ctx, r, s, now); err != nil {
			return err
		}
		out = toSessionResponse(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, &j)
	return &out, nil
}

// Get devuelve la sesión con sus registros y rondas (incluidos los reconteos retractados).
func (uc *SessionUseCase) Get(ctx context.Context, companyID, sessionID string) (*dto.SessionDetailResponse, error) {
	var out dto.SessionDetailResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		s, err := loadSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		entries, err := r.Entries.ListBySession(ctx, s.ID)
		if err != nil {
			return err
		}
		rounds, err := r.Rounds.ListRounds(ctx, s.ID)
		if err != nil {
			return err
		}
		current, err := r.Rounds.MaxRoundNumber(ctx, s.ID)
		if err != nil {
			return err
		}
		out = dto.SessionDetailResponse{
			Session:      toSessionResponse(s),
			CurrentRound: current,
			Entries:      toEntryList(entries),
			Rounds:       make([]dto.RecountRoundResponse, 0, len(rounds)),
		}
		for _, rd := range rounds {
			subs, err := r.Rounds.ListSubmissions(ctx, rd.ID)
			if err != nil {
				return err
			}
			out.Rounds = append(out.Rounds, toRoundResponse(rd, subs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Differences registros con conteos en desacuerdo sin resolver.
func (uc *SessionUseCase) Differences(ctx context.Context, companyID, sessionID string) ([]dto.CountEntryResponse, error) {
	var out []dto.CountEntryResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		s, err := loadSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		entries, err := r.Entries.ListBySession(ctx, s.ID)
		if err != nil {
			return err
		}
		out = make([]dto.CountEntryResponse, 0)
		for _, e := range entries {
			if e.HasDifference() {
				out = append(out, toEntryResponse(e))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForUser sesiones no cerradas donde el usuario es uno de los dos contadores.
func (uc *SessionUseCase) ActiveForUser(ctx context.Context, companyID, userID string) (*dto.SessionListResponse, error) {
	var sessions []*entity.SectorSession
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		var err error
		sessions, err = r.Sessions.ListActiveByAssignee(ctx, companyID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, k int) bool { return sessions[i].CreatedAt.Before(sessions[k].CreatedAt) })
	items := toSessionList(sessions)
	return &dto.SessionListResponse{Items: items, Total: len(items)}, nil
}
