package conteo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// CountUseCase registro de los conteos iniciales (ronda 0).
type CountUseCase struct {
	base
}

// NewCountUseCase construye el caso de uso.
func NewCountUseCase(d Deps) *CountUseCase {
	return &CountUseCase{base: newBase(d)}
}

// SubmitCount escribe el conteo del usuario en su slot (assignee1 -> count1, assignee2 -> count2)
// y recalcula diferencia y estado en la misma transacción, con la fila de la sesión bloqueada.
// Reenviar antes de que el otro contador cuente reemplaza solo el valor propio.
func (uc *CountUseCase) SubmitCount(ctx context.Context, companyID, userID, sessionID string, in dto.SubmitCountRequest) (*dto.CountResultResponse, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if err := validQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := uc.checkProduct(ctx, companyID, in.ProductID); err != nil {
		return nil, err
	}

	var (
		out dto.CountResultResponse
		j   journal
	)
	err := uc.withRetry(ctx, "submit_count", func() error {
		return uc.Tx.Run(ctx, func(r TxRepos) error {
			j.reset()
			s, err := lockSession(ctx, r, companyID, sessionID)
			if err != nil {
				return err
			}
			slot, err := requireAssignee(s, userID)
			if err != nil {
				return err
			}
			if err := requireOpen(s); err != nil {
				return err
			}
			current, err := r.Rounds.MaxRoundNumber(ctx, s.ID)
			if err != nil {
				return err
			}
			if current > 0 {
				return &domain.StaleRoundError{Requested: 0, Current: current}
			}
			if s.State != entity.SessionStatePending && s.State != entity.SessionStateInProgress {
				return fmt.Errorf("%w: la sesión está en %s y no acepta conteos iniciales", domain.ErrInvalidState, s.State)
			}

			baseline, err := r.Stock.Get(ctx, companyID, in.ProductID, s.SectorID)
			if err != nil {
				return err
			}
			if baseline == nil {
				return &domain.ProductNotInScopeError{ProductID: in.ProductID, SectorID: s.SectorID}
			}

			now := uc.now()
			entry, err := r.Entries.GetForUpdate(ctx, s.ID, in.ProductID)
			if err != nil {
				return err
			}
			if entry == nil {
				entry = entity.NewCountEntry(uuid.New().String(), s.ID, in.ProductID, now)
				entry.SetSlot(slot, userID, in.Quantity, now)
				if err := r.Entries.Create(ctx, entry); err != nil {
					return err
				}
			} else {
				if entry.IsSettled() {
					return fmt.Errorf("%w: el producto ya tiene ambos conteos", domain.ErrInvalidState)
				}
				entry.SetSlot(slot, userID, in.Quantity, now)
				if err := r.Entries.Update(ctx, entry); err != nil {
					return err
				}
			}

			if s.State == entity.SessionStatePending {
				if err := j.transition(s, entity.SessionStateInProgress, userID, now); err != nil {
					return err
				}
			}
			if err := uc.advance(ctx, r, s, userID, &j, now); err != nil {
				return err
			}
			s.UpdatedAt = now
			if err := saveSession(ctx, r, s, now); err != nil {
				return err
			}
			out = dto.CountResultResponse{Entry: toEntryResponse(entry), Session: toSessionResponse(s)}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Debug().
		Str("session_id", sessionID).
		Str("product_id", in.ProductID).
		Str("user_id", userID).
		Str("entry_state", out.Entry.State).
		Msg("conteo registrado")
	uc.publish(ctx, &j)
	return &out, nil
}
