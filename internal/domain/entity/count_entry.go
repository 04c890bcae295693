package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryState estado del registro de doble conteo de un producto.
type EntryState string

const (
	EntryStatePending   EntryState = "PENDING"   // sin conteos (o reabierto para reconteo)
	EntryStateCounted   EntryState = "COUNTED"   // un solo conteo presente
	EntryStateVerified  EntryState = "VERIFIED"  // cantidad final determinada
	EntryStateDifferent EntryState = "DIFFERENT" // ambos conteos presentes y distintos
)

// Resolution cómo se obtuvo la cantidad final de un registro.
type Resolution string

const (
	ResolutionNone     Resolution = ""
	ResolutionAgreed   Resolution = "AGREED"   // conteo inicial coincidente
	ResolutionRecount  Resolution = "RECOUNT"  // dos reconteos coincidentes en una ronda
	ResolutionLatest   Resolution = "LATEST"   // tope de rondas: gana el reconteo más reciente
	ResolutionOverride Resolution = "OVERRIDE" // cantidad fijada por un administrador
)

// CountEntry registro de doble conteo de un producto dentro de una sesión.
// Count1 solo lo escribe assignee1 y Count2 solo assignee2; nunca se mezclan en un único campo.
type CountEntry struct {
	ID            string
	SessionID     string
	ProductID     string
	Count1        *decimal.Decimal
	Count1By      string
	Count2        *decimal.Decimal
	Count2By      string
	Difference    *decimal.Decimal // Count2 - Count1, solo con ambos presentes
	State         EntryState
	CurrentRound  int // 0 = conteo inicial
	FinalQuantity *decimal.Decimal
	Resolution    Resolution
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCountEntry crea un registro vacío para el producto.
func NewCountEntry(id, sessionID, productID string, now time.Time) *CountEntry {
	return &CountEntry{
		ID:        id,
		SessionID: sessionID,
		ProductID: productID,
		State:     EntryStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetSlot escribe el conteo del slot indicado y recalcula diferencia y estado en el mismo paso.
// Escribir dos veces el mismo slot reemplaza solo ese valor.
func (e *CountEntry) SetSlot(slot CountSlot, userID string, qty decimal.Decimal, now time.Time) {
	v := qty
	switch slot {
	case SlotOne:
		e.Count1 = &v
		e.Count1By = userID
	case SlotTwo:
		e.Count2 = &v
		e.Count2By = userID
	default:
		return
	}
	e.UpdatedAt = now
	e.Recompute()
}

// ClearSlot elimina el conteo de un slot (retracción de un reconteo) y recalcula.
func (e *CountEntry) ClearSlot(slot CountSlot, now time.Time) {
	switch slot {
	case SlotOne:
		e.Count1 = nil
		e.Count1By = ""
	case SlotTwo:
		e.Count2 = nil
		e.Count2By = ""
	default:
		return
	}
	e.UpdatedAt = now
	e.Recompute()
}

// Recompute deriva diferencia, estado y cantidad final a partir de los dos slots.
func (e *CountEntry) Recompute() {
	e.Difference = nil
	e.FinalQuantity = nil
	e.Resolution = ResolutionNone

	switch {
	case e.Count1 != nil && e.Count2 != nil:
		diff := e.Count2.Sub(*e.Count1)
		e.Difference = &diff
		if diff.IsZero() {
			final := *e.Count1
			e.FinalQuantity = &final
			e.State = EntryStateVerified
			e.Resolution = ResolutionAgreed
			if e.CurrentRound > 0 {
				e.Resolution = ResolutionRecount
			}
			return
		}
		e.State = EntryStateDifferent
	case e.Count1 != nil || e.Count2 != nil:
		e.State = EntryStateCounted
	default:
		e.State = EntryStatePending
	}
}

// Reopen limpia ambos slots para una nueva ronda de reconteo. Los valores previos
// quedan en la ronda (RecountRound.PreviousCount1/2), no se pierden.
func (e *CountEntry) Reopen(round int, now time.Time) {
	e.CurrentRound = round
	e.Count1, e.Count1By = nil, ""
	e.Count2, e.Count2By = nil, ""
	e.UpdatedAt = now
	e.Recompute()
}

// Resolve fija la cantidad final por una vía distinta al acuerdo de conteos (desempate o administrador).
func (e *CountEntry) Resolve(qty decimal.Decimal, how Resolution, now time.Time) {
	final := qty
	e.FinalQuantity = &final
	e.Resolution = how
	e.State = EntryStateVerified
	e.UpdatedAt = now
}

// IsSettled indica que no se espera ningún conteo más para este registro.
func (e *CountEntry) IsSettled() bool {
	return e.State == EntryStateVerified || e.State == EntryStateDifferent
}

// IsResolved indica que el registro tiene cantidad final para el commit.
func (e *CountEntry) IsResolved() bool {
	return e.State == EntryStateVerified && e.FinalQuantity != nil
}

// HasDifference indica desacuerdo sin resolver.
func (e *CountEntry) HasDifference() bool {
	return e.State == EntryStateDifferent
}
