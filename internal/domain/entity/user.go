package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un usuario del sistema (pertenece a una Company).
// El motor de conteos solo consulta identidad y estado; la gestión de usuarios es externa.
type User struct {
	ID        string
	CompanyID string
	Email     string
	Name      string
	Role      string // admin, bodeguero, vendedor
	Status    string // active, inactive, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el usuario puede ser asignado a un conteo.
func (u *User) IsActive() bool {
	return u.Status == "active"
}
