package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBaseline es la cantidad autoritativa de un producto en un sector (stock por sector).
// Solo la confirmación (commit) de una sesión la modifica; los conteos en curso no la tocan.
type StockBaseline struct {
	CompanyID string
	ProductID string
	SectorID  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
