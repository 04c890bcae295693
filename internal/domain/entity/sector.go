package entity

import "time"

// Sector representa una zona física de almacenamiento dentro de las instalaciones de la empresa.
type Sector struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
