package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock base. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `company_id, product_id, sector_id, quantity, updated_at`

// ListBySector productos con stock base en el sector, ordenados por producto.
func (r *StockRepo) ListBySector(ctx context.Context, companyID, sectorID string) ([]*entity.StockBaseline, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_baselines WHERE company_id = $1 AND sector_id = $2
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, companyID, sectorID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockBaseline
	for rows.Next() {
		var s entity.StockBaseline
		if err := rows.Scan(&s.CompanyID, &s.ProductID, &s.SectorID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Get obtiene el stock base de un producto en un sector.
func (r *StockRepo) Get(ctx context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error) {
	return r.get(ctx, companyID, productID, sectorID, "")
}

// GetForUpdate obtiene el stock base y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error) {
	return r.get(ctx, companyID, productID, sectorID, " FOR UPDATE")
}

func (r *StockRepo) get(ctx context.Context, companyID, productID, sectorID, lock string) (*entity.StockBaseline, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_baselines WHERE company_id = $1 AND product_id = $2 AND sector_id = $3` + lock
	var s entity.StockBaseline
	err := r.q.QueryRow(ctx, query, companyID, productID, sectorID).Scan(
		&s.CompanyID, &s.ProductID, &s.SectorID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad base (por empresa, sector y producto).
func (r *StockRepo) Upsert(ctx context.Context, s *entity.StockBaseline) error {
	query := `
		INSERT INTO stock_baselines (company_id, sector_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, sector_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.CompanyID, s.SectorID, s.ProductID, s.Quantity, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
