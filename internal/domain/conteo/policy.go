package conteo

import (
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// TieBreak política cuando las rondas se agotan sin acuerdo.
type TieBreak string

const (
	TieBreakAdminOverride TieBreak = "admin_override" // el registro queda en DIFFERENT hasta que un administrador fije la cantidad
	TieBreakLatest        TieBreak = "latest"         // gana el reconteo vigente más reciente
)

// DefaultMaxRounds tope de rondas por sesión si no se configura otro.
const DefaultMaxRounds = 3

// Policy reglas configurables del escalamiento de reconteos.
type Policy struct {
	MaxRounds int
	TieBreak  TieBreak
}

// DefaultPolicy tope de 3 rondas y desempate por administrador.
func DefaultPolicy() Policy {
	return Policy{MaxRounds: DefaultMaxRounds, TieBreak: TieBreakAdminOverride}
}

// CheckNextRound valida que se pueda abrir la ronda next. override = autorización explícita del administrador.
func (p Policy) CheckNextRound(next int, override bool) error {
	if next > p.max() && !override {
		return &domain.MaxRoundsExceededError{Max: p.max(), Requested: next}
	}
	return nil
}

// IsLastRound indica si la ronda alcanza el tope.
func (p Policy) IsLastRound(round int) bool {
	return round >= p.max()
}

func (p Policy) max() int {
	if p.MaxRounds < 1 {
		return DefaultMaxRounds
	}
	return p.MaxRounds
}

// ApplyRoundOutcome actualiza el estado de la ronda a partir del registro ya recalculado
// (SetSlot/ClearSlot) y, con desempate "latest" en la última ronda, resuelve el registro
// con el reconteo vigente más reciente.
func (p Policy) ApplyRoundOutcome(entry *entity.CountEntry, round *entity.RecountRound, live []*entity.RecountSubmission, now time.Time) {
	round.UpdatedAt = now
	round.ResolvedQuantity = nil

	switch entry.State {
	case entity.EntryStateVerified:
		q := *entry.FinalQuantity
		round.Status = entity.RoundStatusResolved
		round.ResolvedQuantity = &q
	case entity.EntryStateDifferent:
		if !p.IsLastRound(round.RoundNumber) {
			round.Status = entity.RoundStatusDisagreed
			return
		}
		round.Status = entity.RoundStatusExhausted
		if p.TieBreak != TieBreakLatest {
			return
		}
		if latest := mostRecent(live); latest != nil {
			q := latest.Quantity
			entry.Resolve(q, entity.ResolutionLatest, now)
			round.ResolvedQuantity = &q
		}
	default:
		round.Status = entity.RoundStatusOpen
	}
}

func mostRecent(subs []*entity.RecountSubmission) *entity.RecountSubmission {
	var latest *entity.RecountSubmission
	for _, s := range subs {
		if s.Retracted {
			continue
		}
		// a igual instante gana el último en la lista (orden de inserción)
		if latest == nil || !s.CreatedAt.Before(latest.CreatedAt) {
			latest = s
		}
	}
	return latest
}
