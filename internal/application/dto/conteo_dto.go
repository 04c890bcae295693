package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Requests ─────────────────────────────────────────────────────────────────

// SectorAssignmentRequest sector a contar. Los contadores son opcionales y se pueden asignar después.
type SectorAssignmentRequest struct {
	SectorID  string `json:"sector_id" validate:"required"`
	Assignee1 string `json:"assignee1,omitempty"`
	Assignee2 string `json:"assignee2,omitempty" validate:"omitempty,nefield=Assignee1"`
}

// CreateEventRequest entrada para iniciar un inventario completo (una sesión por sector).
type CreateEventRequest struct {
	Name    string                    `json:"name" validate:"required,min=1,max=200"`
	Sectors []SectorAssignmentRequest `json:"sectors" validate:"required,min=1,dive"`
}

// CreateSessionRequest entrada para un conteo independiente de un solo sector.
type CreateSessionRequest struct {
	SectorID  string `json:"sector_id" validate:"required"`
	Assignee1 string `json:"assignee1,omitempty"`
	Assignee2 string `json:"assignee2,omitempty" validate:"omitempty,nefield=Assignee1"`
}

// AssignCountersRequest reasignación de contadores de una sesión.
type AssignCountersRequest struct {
	Assignee1 string `json:"assignee1" validate:"required"`
	Assignee2 string `json:"assignee2" validate:"required,nefield=Assignee1"`
}

// SubmitCountRequest conteo inicial de un producto. El slot lo decide la identidad del usuario.
type SubmitCountRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// OpenRoundRequest apertura de una ronda de reconteo.
// ProductIDs vacío = todos los productos con diferencia. Override autoriza superar el tope de rondas.
type OpenRoundRequest struct {
	ProductIDs []string `json:"product_ids" validate:"omitempty,dive,required"`
	Override   bool     `json:"override"`
}

// SubmitRecountRequest reconteo de un producto en una ronda.
type SubmitRecountRequest struct {
	Round     int             `json:"round" validate:"required,min=1"`
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// OverrideEntryRequest cantidad final fijada por un administrador para un producto en disputa.
type OverrideEntryRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ── Responses ────────────────────────────────────────────────────────────────

// SessionResponse salida de una sesión de conteo.
type SessionResponse struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	EventID   string     `json:"event_id,omitempty"`
	Kind      string     `json:"kind"`
	SectorID  string     `json:"sector_id"`
	State     string     `json:"state"`
	Assignee1 string     `json:"assignee1"`
	Assignee2 string     `json:"assignee2"`
	CreatedBy string     `json:"created_by"`
	ClosedBy  string     `json:"closed_by,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CountEntryResponse registro de doble conteo.
type CountEntryResponse struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"session_id"`
	ProductID     string           `json:"product_id"`
	Count1        *decimal.Decimal `json:"count1"`
	Count1By      string           `json:"count1_by,omitempty"`
	Count2        *decimal.Decimal `json:"count2"`
	Count2By      string           `json:"count2_by,omitempty"`
	Difference    *decimal.Decimal `json:"difference"`
	State         string           `json:"state"`
	CurrentRound  int              `json:"current_round"`
	FinalQuantity *decimal.Decimal `json:"final_quantity"`
	Resolution    string           `json:"resolution,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// RecountSubmissionResponse un reconteo enviado (incluye los retractados).
type RecountSubmissionResponse struct {
	ID          string          `json:"id"`
	RoundNumber int             `json:"round"`
	ProductID   string          `json:"product_id"`
	UserID      string          `json:"user_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Retracted   bool            `json:"retracted"`
	RetractedBy string          `json:"retracted_by,omitempty"`
	RetractedAt *time.Time      `json:"retracted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecountRoundResponse ronda de reconteo de un producto.
type RecountRoundResponse struct {
	ID               string                      `json:"id"`
	ProductID        string                      `json:"product_id"`
	RoundNumber      int                         `json:"round"`
	OpenedBy         string                      `json:"opened_by"`
	PreviousCount1   *decimal.Decimal            `json:"previous_count1"`
	PreviousCount2   *decimal.Decimal            `json:"previous_count2"`
	Status           string                      `json:"status"`
	ResolvedQuantity *decimal.Decimal            `json:"resolved_quantity"`
	Submissions      []RecountSubmissionResponse `json:"submissions,omitempty"`
}

// SessionDetailResponse sesión con sus registros y rondas.
type SessionDetailResponse struct {
	Session      SessionResponse        `json:"session"`
	CurrentRound int                    `json:"current_round"`
	Entries      []CountEntryResponse   `json:"entries"`
	Rounds       []RecountRoundResponse `json:"rounds"`
}

// CountResultResponse resultado de una escritura de conteo o reconteo.
type CountResultResponse struct {
	Entry      CountEntryResponse         `json:"entry"`
	Session    SessionResponse            `json:"session"`
	Submission *RecountSubmissionResponse `json:"submission,omitempty"`
	Round      *RecountRoundResponse      `json:"round,omitempty"`
}

// OpenRoundResponse ronda abierta.
type OpenRoundResponse struct {
	RoundNumber int             `json:"round"`
	ProductIDs  []string        `json:"product_ids"`
	Session     SessionResponse `json:"session"`
}

// AuditRecordResponse ajuste aplicado al stock base.
type AuditRecordResponse struct {
	ID               string          `json:"id"`
	SessionID        string          `json:"session_id"`
	EventID          string          `json:"event_id,omitempty"`
	SectorID         string          `json:"sector_id"`
	ProductID        string          `json:"product_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Delta            decimal.Decimal `json:"delta"`
	Resolution       string          `json:"resolution"`
	UserID           string          `json:"user_id"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CommitResponse resultado del cierre. AlreadyClosed indica que la sesión ya estaba cerrada
// y Records es la bitácora previa, sin cambios.
type CommitResponse struct {
	Session       SessionResponse       `json:"session"`
	AlreadyClosed bool                  `json:"already_closed"`
	Records       []AuditRecordResponse `json:"records"`
}

// EventResponse inventario completo con su estado derivado de las sesiones.
type EventResponse struct {
	ID          string            `json:"id"`
	CompanyID   string            `json:"company_id"`
	AdminID     string            `json:"admin_id"`
	Name        string            `json:"name"`
	State       string            `json:"state"`
	StateCounts map[string]int    `json:"state_counts"`
	Sessions    []SessionResponse `json:"sessions"`
	StartedAt   time.Time         `json:"started_at"`
	ClosedAt    *time.Time        `json:"closed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SessionListResponse listado de sesiones.
type SessionListResponse struct {
	Items []SessionResponse `json:"items"`
	Total int               `json:"total"`
}
