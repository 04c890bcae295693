package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrInvalidState = errors.New("operación no permitida en el estado actual de la sesión")
	ErrSameAssignee = errors.New("los dos contadores de una sesión deben ser usuarios distintos")
)

// Errores del motor de conciliación. Cada tipo concreto de abajo responde a errors.Is con su centinela.
var (
	ErrNotAssigned            = errors.New("usuario no asignado a la sesión")
	ErrSessionClosed          = errors.New("la sesión está cerrada")
	ErrProductNotInScope      = errors.New("el producto no pertenece al sector de la sesión")
	ErrMaxRoundsExceeded      = errors.New("se alcanzó el máximo de rondas de reconteo")
	ErrStaleRound             = errors.New("la ronda indicada ya fue superada")
	ErrUnresolvedEntries      = errors.New("hay conteos sin resolver")
	ErrUnknownReference       = errors.New("referencia desconocida")
	ErrConcurrentModification = errors.New("modificación concurrente, reintente")
)

// NotAssignedError el usuario no es assignee1 ni assignee2 de la sesión.
type NotAssignedError struct {
	SessionID string
	UserID    string
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("usuario %s no asignado a la sesión %s", e.UserID, e.SessionID)
}

func (e *NotAssignedError) Is(target error) bool { return target == ErrNotAssigned }

// SessionClosedError la sesión ya está cerrada y no acepta escrituras.
type SessionClosedError struct {
	SessionID string
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("la sesión %s está cerrada", e.SessionID)
}

func (e *SessionClosedError) Is(target error) bool { return target == ErrSessionClosed }

// ProductNotInScopeError el producto no tiene stock base en el sector de la sesión.
type ProductNotInScopeError struct {
	ProductID string
	SectorID  string
}

func (e *ProductNotInScopeError) Error() string {
	return fmt.Sprintf("el producto %s no pertenece al sector %s", e.ProductID, e.SectorID)
}

func (e *ProductNotInScopeError) Is(target error) bool { return target == ErrProductNotInScope }

// MaxRoundsExceededError se intentó abrir una ronda por encima del tope sin autorización del administrador.
type MaxRoundsExceededError struct {
	Max       int
	Requested int
}

func (e *MaxRoundsExceededError) Error() string {
	return fmt.Sprintf("ronda %d supera el máximo de %d rondas", e.Requested, e.Max)
}

func (e *MaxRoundsExceededError) Is(target error) bool { return target == ErrMaxRoundsExceeded }

// StaleRoundError la escritura apunta a una ronda anterior a la vigente (la ronda 0 es el conteo inicial).
type StaleRoundError struct {
	Requested int
	Current   int
}

func (e *StaleRoundError) Error() string {
	return fmt.Sprintf("ronda %d superada, la ronda vigente es %d", e.Requested, e.Current)
}

func (e *StaleRoundError) Is(target error) bool { return target == ErrStaleRound }

// UnresolvedEntriesError el cierre se rechaza porque hay productos sin cantidad final.
type UnresolvedEntriesError struct {
	ProductIDs []string
}

func (e *UnresolvedEntriesError) Error() string {
	return fmt.Sprintf("%d producto(s) sin resolver: %s", len(e.ProductIDs), strings.Join(e.ProductIDs, ", "))
}

func (e *UnresolvedEntriesError) Is(target error) bool { return target == ErrUnresolvedEntries }

// UnknownReferenceError empresa, sector, producto, usuario, sesión o ronda inexistente o de otra empresa.
type UnknownReferenceError struct {
	Kind string
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s %s no existe", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Is(target error) bool { return target == ErrUnknownReference }

// ConcurrentModificationError otro escritor modificó el recurso entre la lectura y la escritura.
type ConcurrentModificationError struct {
	Resource string
	ID       string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("modificación concurrente en %s %s", e.Resource, e.ID)
}

func (e *ConcurrentModificationError) Is(target error) bool {
	return target == ErrConcurrentModification
}

// Unknown atajo para construir un UnknownReferenceError.
func Unknown(kind, id string) error {
	return &UnknownReferenceError{Kind: kind, ID: id}
}
