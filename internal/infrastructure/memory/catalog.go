package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = CompanyRepo{}
	_ repository.UserRepository    = UserRepo{}
	_ repository.ProductRepository = ProductRepo{}
	_ repository.SectorRepository  = SectorRepo{}
)

// Catalog datos maestros en memoria (empresas, usuarios, productos y sectores).
type Catalog struct {
	mu        sync.RWMutex
	companies map[string]entity.Company
	users     map[string]entity.User
	products  map[string]entity.Product
	sectors   map[string]entity.Sector
}

// NewCatalog crea un catálogo vacío.
func NewCatalog() *Catalog {
	return &Catalog{
		companies: make(map[string]entity.Company),
		users:     make(map[string]entity.User),
		products:  make(map[string]entity.Product),
		sectors:   make(map[string]entity.Sector),
	}
}

// AddCompany registra una empresa.
func (c *Catalog) AddCompany(v entity.Company) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.companies[v.ID] = v
}

// AddUser registra un usuario.
func (c *Catalog) AddUser(v entity.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[v.ID] = v
}

// AddProduct registra un producto.
func (c *Catalog) AddProduct(v entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[v.ID] = v
}

// AddSector registra un sector.
func (c *Catalog) AddSector(v entity.Sector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sectors[v.ID] = v
}

func (c *Catalog) Companies() CompanyRepo { return CompanyRepo{c} }
func (c *Catalog) Users() UserRepo         { return UserRepo{c} }
func (c *Catalog) Products() ProductRepo   { return ProductRepo{c} }
func (c *Catalog) Sectors() SectorRepo     { return SectorRepo{c} }

// CompanyRepo lectura de empresas del catálogo.
type CompanyRepo struct{ c *Catalog }

func (r CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	v, ok := r.c.companies[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// UserRepo lectura de usuarios del catálogo.
type UserRepo struct{ c *Catalog }

func (r UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	v, ok := r.c.users[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// ProductRepo lectura de productos del catálogo.
type ProductRepo struct{ c *Catalog }

func (r ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	v, ok := r.c.products[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// SectorRepo lectura de sectores del catálogo.
type SectorRepo struct{ c *Catalog }

func (r SectorRepo) GetByID(_ context.Context, id string) (*entity.Sector, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	v, ok := r.c.sectors[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}
