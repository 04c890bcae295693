package conteo

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// CommitUseCase cierre de sesiones y actualización del stock base.
type CommitUseCase struct {
	base
}

// NewCommitUseCase construye el caso de uso.
func NewCommitUseCase(d Deps) *CommitUseCase {
	return &CommitUseCase{base: newBase(d)}
}

// Commit cierra la sesión escribiendo las cantidades finales en el stock base (todo o nada).
// Sobre una sesión ya cerrada no escribe nada y devuelve la bitácora existente.
func (uc *CommitUseCase) Commit(ctx context.Context, companyID, adminID, sessionID string) (*dto.CommitResponse, error) {
	var (
		out dto.CommitResponse
		j   journal
	)
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		j.reset()
		s, err := lockSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		if s.State == entity.SessionStateClosed {
			records, err := r.Audit.ListBySession(ctx, s.ID)
			if err != nil {
				return err
			}
			out = dto.CommitResponse{Session: toSessionResponse(s), AlreadyClosed: true, Records: toAuditList(records)}
			return nil
		}

		now := uc.now()
		records, err := uc.closeSession(ctx, r, s, adminID, &j, now)
		if err != nil {
			return err
		}
		if err := saveSession(ctx, r, s, now); err != nil {
			return err
		}
		out = dto.CommitResponse{Session: toSessionResponse(s), Records: toAuditList(records)}
		return nil
	})
	if err != nil {
		uc.Log.Warn().Err(err).Str("session_id", sessionID).Msg("cierre rechazado")
		return nil, err
	}
	uc.publish(ctx, &j)
	return &out, nil
}

// AuditTrail ajustes aplicados al stock base por el cierre de la sesión.
func (uc *CommitUseCase) AuditTrail(ctx context.Context, companyID, sessionID string) ([]dto.AuditRecordResponse, error) {
	var out []dto.AuditRecordResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		s, err := loadSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		records, err := r.Audit.ListBySession(ctx, s.ID)
		if err != nil {
			return err
		}
		out = toAuditList(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
