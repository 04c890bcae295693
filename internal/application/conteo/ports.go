package conteo

import (
	"context"
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Events   repository.InventoryEventRepository
	Sessions repository.SectorSessionRepository
	Entries  repository.CountEntryRepository
	Rounds   repository.RecountRoundRepository
	Stock    repository.StockRepository
	Audit    repository.AuditRecordRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// Transition cambio de estado de una sesión, publicado después del commit de la transacción.
type Transition struct {
	CompanyID string              `json:"company_id"`
	SessionID string              `json:"session_id"`
	EventID   string              `json:"event_id,omitempty"`
	SectorID  string              `json:"sector_id"`
	From      entity.SessionState `json:"from"`
	To        entity.SessionState `json:"to"`
	ActorID   string              `json:"actor_id"`
	At        time.Time           `json:"at"`
}

// Notifier avisa a supervisores y contadores de las transiciones relevantes.
// Un error de notificación nunca revierte la operación que la originó.
type Notifier interface {
	Notify(ctx context.Context, t Transition) error
}

// Deps dependencias compartidas por los casos de uso del motor de conteos.
// Los repositorios de datos maestros se consultan fuera de la transacción.
type Deps struct {
	Tx        TxRunner
	Companies repository.CompanyRepository
	Users     repository.UserRepository
	Products  repository.ProductRepository
	Sectors   repository.SectorRepository
	Notifier  Notifier
	Policy    conteo.Policy
	Log       *logger.Logger
	// Now reloj inyectable; por defecto time.Now.
	Now func() time.Time
	// SubmitRetries reintentos ante ConcurrentModificationError en las escrituras de conteo.
	SubmitRetries int
}
