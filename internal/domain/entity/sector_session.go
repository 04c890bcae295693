package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain"
)

// SessionState estado de la sesión de conteo de un sector.
type SessionState string

const (
	SessionStatePending              SessionState = "PENDING"
	SessionStateInProgress           SessionState = "IN_PROGRESS"
	SessionStateAwaitingVerification SessionState = "AWAITING_VERIFICATION"
	SessionStateHasDifferences       SessionState = "HAS_DIFFERENCES"
	SessionStateClosed               SessionState = "CLOSED"
)

// IsValid verifica que el estado sea uno de los conocidos.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStatePending, SessionStateInProgress, SessionStateAwaitingVerification,
		SessionStateHasDifferences, SessionStateClosed:
		return true
	}
	return false
}

// IsTerminal indica si la sesión ya no acepta escrituras.
func (s SessionState) IsTerminal() bool {
	return s == SessionStateClosed
}

// CanTransitionTo valida la máquina de estados de la sesión.
// PENDING no puede cerrarse directamente: una sesión sin conteos no sale de PENDING.
func (s SessionState) CanTransitionTo(target SessionState) bool {
	switch s {
	case SessionStatePending:
		return target == SessionStateInProgress
	case SessionStateInProgress:
		return target == SessionStateAwaitingVerification || target == SessionStateClosed
	case SessionStateAwaitingVerification:
		return target == SessionStateHasDifferences || target == SessionStateClosed
	case SessionStateHasDifferences:
		return target == SessionStateInProgress || target == SessionStateClosed
	}
	return false
}

// SessionKind distingue la sesión que forma parte de un inventario completo de la corrida independiente.
type SessionKind string

const (
	SessionKindEvent      SessionKind = "EVENT"
	SessionKindStandalone SessionKind = "STANDALONE"
)

// CountSlot identifica cuál de los dos conteos independientes escribe un contador.
type CountSlot int

const (
	SlotNone CountSlot = 0
	SlotOne  CountSlot = 1 // assignee1 -> count1
	SlotTwo  CountSlot = 2 // assignee2 -> count2
)

// SectorSession es la tarea de conteo de un sector dentro de un inventario (o independiente).
// Assignee1/Assignee2 son identidades, no propiedad: solo ellos escriben conteos en la sesión.
type SectorSession struct {
	ID        string
	CompanyID string
	EventID   string // vacío si Kind == STANDALONE
	Kind      SessionKind
	SectorID  string
	State     SessionState
	Assignee1 string
	Assignee2 string
	CreatedBy string
	ClosedBy  string
	StartedAt *time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotFor devuelve el slot del usuario; SlotNone si no es ninguno de los dos contadores.
func (s *SectorSession) SlotFor(userID string) CountSlot {
	switch {
	case userID == "":
		return SlotNone
	case userID == s.Assignee1:
		return SlotOne
	case userID == s.Assignee2:
		return SlotTwo
	}
	return SlotNone
}

// IsAssignee indica si el usuario es uno de los dos contadores.
func (s *SectorSession) IsAssignee(userID string) bool {
	return s.SlotFor(userID) != SlotNone
}

// TransitionTo aplica una transición válida y sella los tiempos de inicio/cierre.
func (s *SectorSession) TransitionTo(target SessionState, now time.Time) error {
	if !s.State.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, s.State, target)
	}
	if target == SessionStateInProgress && s.StartedAt == nil {
		t := now
		s.StartedAt = &t
	}
	if target == SessionStateClosed {
		t := now
		s.ClosedAt = &t
	}
	s.State = target
	s.UpdatedAt = now
	return nil
}
