package entity

import "time"

// Estados de empresa.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
	CompanyStatusInactive  = "inactive"
)

// Company representa una organización/tenant del sistema. Todo conteo pertenece a una empresa.
type Company struct {
	ID        string
	Name      string
	NIT       string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si la empresa puede iniciar inventarios.
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}
