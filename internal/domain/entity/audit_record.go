package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord historial inmutable de un ajuste aplicado al stock base al cerrar una sesión.
// Se crea uno por producto con delta distinto de cero; nunca se actualiza ni se borra.
type AuditRecord struct {
	ID               string
	CompanyID        string
	SessionID        string
	EventID          string // vacío en sesiones independientes
	SectorID         string
	ProductID        string
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Delta            decimal.Decimal // NewQuantity - PreviousQuantity
	Resolution       Resolution      // cómo se obtuvo la cantidad final
	UserID           string          // administrador o contador que provocó el cierre
	CreatedAt        time.Time
}
