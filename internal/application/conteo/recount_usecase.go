package conteo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// RecountUseCase escalamiento de diferencias por rondas de reconteo.
type RecountUseCase struct {
	base
}

// NewRecountUseCase construye el caso de uso.
func NewRecountUseCase(d Deps) *RecountUseCase {
	return &RecountUseCase{base: newBase(d)}
}

// OpenRound abre la ronda max+1 de la sesión para los productos en disputa indicados
// (todos los que tengan diferencia si la lista viene vacía). Todos comparten el número de ronda.
// Los registros reabiertos vuelven a PENDING y sus conteos previos quedan en la ronda.
func (uc *RecountUseCase) OpenRound(ctx context.Context, companyID, adminID, sessionID string, in dto.OpenRoundRequest) (*dto.OpenRoundResponse, error) {
	var (
		out dto.OpenRoundResponse
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
		if s.State != entity.SessionStateHasDifferences {
			return fmt.Errorf("%w: solo se abren rondas con diferencias confirmadas (estado %s)", domain.ErrInvalidState, s.State)
		}

		entries, err := r.Entries.ListBySession(ctx, s.ID)
		if err != nil {
			return err
		}
		products, err := disputedProducts(entries, in.ProductIDs)
		if err != nil {
			return err
		}

		last, err := r.Rounds.MaxRoundNumber(ctx, s.ID)
		if err != nil {
			return err
		}
		next := last + 1
		if err := uc.Policy.CheckNextRound(next, in.Override); err != nil {
			return err
		}

		now := uc.now()
		for _, productID := range products {
			entry, err := r.Entries.GetForUpdate(ctx, s.ID, productID)
			if err != nil {
				return err
			}
			if entry == nil {
				return domain.Unknown("registro", productID)
			}
			round := &entity.RecountRound{
				ID:             uuid.New().String(),
				SessionID:      s.ID,
				ProductID:      productID,
				RoundNumber:    next,
				OpenedBy:       adminID,
				PreviousCount1: entry.Count1,
				PreviousCount2: entry.Count2,
				Status:         entity.RoundStatusOpen,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := r.Rounds.CreateRound(ctx, round); err != nil {
				return err
			}
			entry.Reopen(next, now)
			if err := r.Entries.Update(ctx, entry); err != nil {
				return err
			}
		}

		if err := j.transition(s, entity.SessionStateInProgress, adminID, now); err != nil {
			return err
		}
		if err := saveSession(ctx, r, s, now); err != nil {
			return err
		}
		out = dto.OpenRoundResponse{RoundNumber: next, ProductIDs: products, Session: toSessionResponse(s)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().
		Str("session_id", sessionID).
		Int("round", out.RoundNumber).
		Strs("products", out.ProductIDs).
		Bool("override", in.Override).
		Msg("ronda de reconteo abierta")
	uc.publish(ctx, &j)
	return &out, nil
}

// disputedProducts productos a reabrir, ordenados. Cada uno debe tener diferencia sin resolver.
func disputedProducts(entries []*entity.CountEntry, requested []string) ([]string, error) {
	byProduct := make(map[string]*entity.CountEntry, len(entries))
	for _, e := range entries {
		byProduct[e.ProductID] = e
	}

	var out []string
	if len(requested) == 0 {
		for _, e := range entries {
			if e.HasDifference() {
				out = append(out, e.ProductID)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: no hay productos con diferencia", domain.ErrInvalidState)
		}
		sort.Strings(out)
		return out, nil
	}

	seen := make(map[string]struct{}, len(requested))
	for _, p := range requested {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		e, ok := byProduct[p]
		if !ok {
			return nil, domain.Unknown("registro", p)
		}
		if !e.HasDifference() {
			return nil, fmt.Errorf("%w: el producto %s no está en disputa", domain.ErrInvalidInput, p)
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// SubmitRecount registra el reconteo del usuario en la ronda vigente. Un envío previo del mismo
// usuario en la misma ronda queda retractado (reemplazado); las rondas superadas se rechazan.
func (uc *RecountUseCase) SubmitRecount(ctx context.Context, companyID, userID, sessionID string, in dto.SubmitRecountRequest) (*dto.CountResultResponse, error) {
	if in.ProductID == "" || in.Round < 1 {
		return nil, fmt.Errorf("%w: product_id y round requeridos", domain.ErrInvalidInput)
	}
	if err := validQuantity(in.Quantity); err != nil {
		return nil, err
	}

	var (
		out dto.CountResultResponse
		j   journal
	)
	err := uc.withRetry(ctx, "submit_recount", func() error {
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
			if in.Round < current {
				return &domain.StaleRoundError{Requested: in.Round, Current: current}
			}
			if in.Round > current {
				return domain.Unknown("ronda", strconv.Itoa(in.Round))
			}
			if s.State != entity.SessionStateInProgress {
				return fmt.Errorf("%w: la sesión está en %s y no acepta reconteos", domain.ErrInvalidState, s.State)
			}

			entry, err := r.Entries.GetForUpdate(ctx, s.ID, in.ProductID)
			if err != nil {
				return err
			}
			round, err := r.Rounds.GetRound(ctx, s.ID, in.Round, in.ProductID)
			if err != nil {
				return err
			}
			if entry == nil || round == nil {
				return domain.Unknown("ronda", fmt.Sprintf("%d/%s", in.Round, in.ProductID))
			}
			if entry.CurrentRound != in.Round {
				return &domain.StaleRoundError{Requested: in.Round, Current: entry.CurrentRound}
			}
			if entry.IsSettled() {
				return fmt.Errorf("%w: la ronda %d del producto ya tiene ambos reconteos", domain.ErrInvalidState, in.Round)
			}

			now := uc.now()
			subs, err := r.Rounds.ListSubmissions(ctx, round.ID)
			if err != nil {
				return err
			}
			for _, prev := range entity.LiveSubmissions(subs) {
				if prev.UserID != userID {
					continue
				}
				prev.Retract(userID, now)
				if err := r.Rounds.UpdateSubmission(ctx, prev); err != nil {
					return err
				}
			}
			sub := &entity.RecountSubmission{
				ID:          uuid.New().String(),
				RoundID:     round.ID,
				SessionID:   s.ID,
				ProductID:   in.ProductID,
				RoundNumber: in.Round,
				UserID:      userID,
				Slot:        slot,
				Quantity:    in.Quantity,
				CreatedAt:   now,
			}
			if err := r.Rounds.CreateSubmission(ctx, sub); err != nil {
				return err
			}
			subs = append(subs, sub)

			entry.SetSlot(slot, userID, in.Quantity, now)
			uc.Policy.ApplyRoundOutcome(entry, round, entity.LiveSubmissions(subs), now)
			if err := r.Rounds.UpdateRound(ctx, round); err != nil {
				return err
			}
			if err := r.Entries.Update(ctx, entry); err != nil {
				return err
			}
			if err := uc.advance(ctx, r, s, userID, &j, now); err != nil {
				return err
			}
			s.UpdatedAt = now
			if err := saveSession(ctx, r, s, now); err != nil {
				return err
			}

			sr := toSubmissionResponse(sub)
			rr := toRoundResponse(round, subs)
			out = dto.CountResultResponse{
				Entry:      toEntryResponse(entry),
				Session:    toSessionResponse(s),
				Submission: &sr,
				Round:      &rr,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Debug().
		Str("session_id", sessionID).
		Str("product_id", in.ProductID).
		Int("round", in.Round).
		Str("round_status", out.Round.Status).
		Msg("reconteo registrado")
	uc.publish(ctx, &j)
	return &out, nil
}

// Retract marca un reconteo como retractado (lápida). No renumera rondas: el slot del contador
// queda libre y el registro se reevalúa sin ese valor. Solo sobre la ronda vigente del producto.
func (uc *RecountUseCase) Retract(ctx context.Context, companyID, adminID, submissionID string) (*dto.CountResultResponse, error) {
	var out dto.CountResultResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		sub, err := r.Rounds.GetSubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.Unknown("reconteo", submissionID)
		}
		s, err := lockSession(ctx, r, companyID, sub.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownReference) {
				return domain.Unknown("reconteo", submissionID)
			}
			return err
		}
		if err := requireOpen(s); err != nil {
			return err
		}
		entry, err := r.Entries.GetForUpdate(ctx, s.ID, sub.ProductID)
		if err != nil {
			return err
		}
		round, err := r.Rounds.GetRound(ctx, s.ID, sub.RoundNumber, sub.ProductID)
		if err != nil {
			return err
		}
		if entry == nil || round == nil {
			return domain.Unknown("reconteo", submissionID)
		}

		if !sub.Retracted {
			if entry.CurrentRound != sub.RoundNumber {
				return &domain.StaleRoundError{Requested: sub.RoundNumber, Current: entry.CurrentRound}
			}
			if s.State != entity.SessionStateInProgress {
				return fmt.Errorf("%w: solo se retracta mientras la ronda está en curso (estado %s)", domain.ErrInvalidState, s.State)
			}
			now := uc.now()
			sub.Retract(adminID, now)
			if err := r.Rounds.UpdateSubmission(ctx, sub); err != nil {
				return err
			}
			subs, err := r.Rounds.ListSubmissions(ctx, round.ID)
			if err != nil {
				return err
			}
			live := entity.LiveSubmissions(subs)
			if !hasLiveSlot(live, sub.Slot) {
				entry.ClearSlot(sub.Slot, now)
			}
			uc.Policy.ApplyRoundOutcome(entry, round, live, now)
			if err := r.Rounds.UpdateRound(ctx, round); err != nil {
				return err
			}
			if err := r.Entries.Update(ctx, entry); err != nil {
				return err
			}
			s.UpdatedAt = now
			if err := r.Sessions.Update(ctx, s); err != nil {
				return err
			}
		}

		subs, err := r.Rounds.ListSubmissions(ctx, round.ID)
		if err != nil {
			return err
		}
		sr := toSubmissionResponse(sub)
		rr := toRoundResponse(round, subs)
		out = dto.CountResultResponse{
			Entry:      toEntryResponse(entry),
			Session:    toSessionResponse(s),
			Submission: &sr,
			Round:      &rr,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("submission_id", submissionID).Str("admin_id", adminID).Msg("reconteo retractado")
	return &out, nil
}

func hasLiveSlot(live []*entity.RecountSubmission, slot entity.CountSlot) bool {
	for _, s := range live {
		if s.Slot == slot {
			return true
		}
	}
	return false
}

// OverrideEntry el administrador fija la cantidad final de un producto en disputa.
// Es la vía de desempate con la política admin_override; no cierra la sesión.
func (uc *RecountUseCase) OverrideEntry(ctx context.Context, companyID, adminID, sessionID, productID string, in dto.OverrideEntryRequest) (*dto.CountResultResponse, error) {
	if err := validQuantity(in.Quantity); err != nil {
		return nil, err
	}
	var out dto.CountResultResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		s, err := lockSession(ctx, r, companyID, sessionID)
		if err != nil {
			return err
		}
		if err := requireOpen(s); err != nil {
			return err
		}
		if s.State != entity.SessionStateAwaitingVerification && s.State != entity.SessionStateHasDifferences {
			return fmt.Errorf("%w: la cantidad solo se fija durante la verificación (estado %s)", domain.ErrInvalidState, s.State)
		}
		entry, err := r.Entries.GetForUpdate(ctx, s.ID, productID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.Unknown("registro", productID)
		}
		if !entry.HasDifference() {
			return fmt.Errorf("%w: el producto %s no está en disputa", domain.ErrInvalidState, productID)
		}

		now := uc.now()
		entry.Resolve(in.Quantity, entity.ResolutionOverride, now)
		if err := r.Entries.Update(ctx, entry); err != nil {
			return err
		}
		if entry.CurrentRound > 0 {
			round, err := r.Rounds.GetRound(ctx, s.ID, entry.CurrentRound, productID)
			if err != nil {
				return err
			}
			if round != nil {
				q := in.Quantity
				round.ResolvedQuantity = &q
				round.UpdatedAt = now
				if err := r.Rounds.UpdateRound(ctx, round); err != nil {
					return err
				}
			}
		}
		s.UpdatedAt = now
		if err := r.Sessions.Update(ctx, s); err != nil {
			return err
		}
		out = dto.CountResultResponse{Entry: toEntryResponse(entry), Session: toSessionResponse(s)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().
		Str("session_id", sessionID).
		Str("product_id", productID).
		Str("admin_id", adminID).
		Str("quantity", in.Quantity.String()).
		Msg("cantidad fijada por administrador")
	return &out, nil
}
