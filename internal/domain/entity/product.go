package entity

import "time"

// Product representa un producto o SKU del inventario.
// Para el motor de conteos es dato maestro de solo lectura.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	UnitMeasure string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
