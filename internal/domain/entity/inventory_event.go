package entity

import "time"

// EventState estado agregado de un inventario completo.
type EventState string

const (
	EventStatePending    EventState = "PENDING"
	EventStateInProgress EventState = "IN_PROGRESS"
	EventStateClosed     EventState = "CLOSED"
)

// InventoryEvent representa un inventario completo de la empresa (uno o varios sectores).
// Su estado se deriva siempre de las sesiones que posee; State guarda la última derivación
// para listados y auditoría, nunca como fuente de verdad.
type InventoryEvent struct {
	ID        string
	CompanyID string
	AdminID   string // usuario administrador que lo creó
	Name      string
	State     EventState
	StartedAt time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
