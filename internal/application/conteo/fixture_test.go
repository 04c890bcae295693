package conteo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	reglas "github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: empresa con un sector {A:10, B:5}, dos contadores, un intruso y un admin
// ──────────────────────────────────────────────────────────────────────────────

const (
	empresa  = "empresa-1"
	otra     = "empresa-2"
	admin    = "admin-1"
	ana      = "ana"
	beto     = "beto"
	carla    = "carla"
	sector1  = "sector-1"
	sector2  = "sector-2"
	prodA    = "A"
	prodB    = "B"
	prodC    = "C" // existe en el catálogo pero sin stock en ningún sector
	prodOtra = "X"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// recorder guarda las transiciones notificadas.
type recorder struct {
	mu   sync.Mutex
	seen []conteo.Transition
	fail bool
}

func (r *recorder) Notify(_ context.Context, t conteo.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, t)
	if r.fail {
		return errors.New("canal caído")
	}
	return nil
}

func (r *recorder) states() []entity.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.SessionState, 0, len(r.seen))
	for _, t := range r.seen {
		out = append(out, t.To)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	catalog  *memory.Catalog
	notifier *recorder
	deps     conteo.Deps

	sessions *conteo.SessionUseCase
	counts   *conteo.CountUseCase
	recounts *conteo.RecountUseCase
	events   *conteo.EventUseCase
	commits  *conteo.CommitUseCase
}

// reloj avanza un segundo en cada lectura para que los envíos tengan orden temporal estricto.
func reloj() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T, policy reglas.Policy) *fixture {
	t.Helper()
	catalog := memory.NewCatalog()
	catalog.AddCompany(entity.Company{ID: empresa, Name: "Bodegas SAS", Status: entity.CompanyStatusActive})
	catalog.AddCompany(entity.Company{ID: otra, Name: "Otra SAS", Status: entity.CompanyStatusActive})
	for _, u := range []entity.User{
		{ID: admin, CompanyID: empresa, Role: entity.RoleAdmin, Status: "active"},
		{ID: ana, CompanyID: empresa, Role: entity.RoleBodeguero, Status: "active"},
		{ID: beto, CompanyID: empresa, Role: entity.RoleBodeguero, Status: "active"},
		{ID: carla, CompanyID: empresa, Role: entity.RoleBodeguero, Status: "active"},
		{ID: "inactivo", CompanyID: empresa, Role: entity.RoleBodeguero, Status: "inactive"},
	} {
		catalog.AddUser(u)
	}
	catalog.AddSector(entity.Sector{ID: sector1, CompanyID: empresa, Name: "Pasillo 1", Active: true})
	catalog.AddSector(entity.Sector{ID: sector2, CompanyID: empresa, Name: "Pasillo 2", Active: true})
	for _, p := range []string{prodA, prodB, prodC} {
		catalog.AddProduct(entity.Product{ID: p, CompanyID: empresa, SKU: "SKU-" + p, Active: true})
	}
	catalog.AddProduct(entity.Product{ID: prodOtra, CompanyID: otra, SKU: "SKU-X", Active: true})

	store := memory.NewStore()
	store.SeedStock(
		entity.StockBaseline{CompanyID: empresa, ProductID: prodA, SectorID: sector1, Quantity: dec(10)},
		entity.StockBaseline{CompanyID: empresa, ProductID: prodB, SectorID: sector1, Quantity: dec(5)},
		entity.StockBaseline{CompanyID: empresa, ProductID: prodA, SectorID: sector2, Quantity: dec(3)},
	)

	rec := &recorder{}
	deps := conteo.Deps{
		Tx:            store,
		Companies:     catalog.Companies(),
		Users:         catalog.Users(),
		Products:      catalog.Products(),
		Sectors:       catalog.Sectors(),
		Notifier:      rec,
		Policy:        policy,
		Now:           reloj(),
		SubmitRetries: 3,
	}
	return &fixture{
		store:    store,
		catalog:  catalog,
		notifier: rec,
		deps:     deps,
		sessions: conteo.NewSessionUseCase(deps),
		counts:   conteo.NewCountUseCase(deps),
		recounts: conteo.NewRecountUseCase(deps),
		events:   conteo.NewEventUseCase(deps),
		commits:  conteo.NewCommitUseCase(deps),
	}
}

// standalone crea una sesión independiente del sector1 con ana y beto.
func (f *fixture) standalone(t *testing.T) string {
	t.Helper()
	s, err := f.sessions.CreateStandalone(context.Background(), empresa, admin, dto.CreateSessionRequest{
		SectorID: sector1, Assignee1: ana, Assignee2: beto,
	})
	require.NoError(t, err)
	return s.ID
}

func (f *fixture) count(t *testing.T, sessionID, user, product string, qty int64) *dto.CountResultResponse {
	t.Helper()
	res, err := f.counts.SubmitCount(context.Background(), empresa, user, sessionID, dto.SubmitCountRequest{
		ProductID: product, Quantity: dec(qty),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) recount(t *testing.T, sessionID, user, product string, round int, qty int64) *dto.CountResultResponse {
	t.Helper()
	res, err := f.recounts.SubmitRecount(context.Background(), empresa, user, sessionID, dto.SubmitRecountRequest{
		Round: round, ProductID: product, Quantity: dec(qty),
	})
	require.NoError(t, err)
	return res
}

// withDifferenceOnB lleva la sesión a HAS_DIFFERENCES con A=10/10 y B=5/7.
func (f *fixture) withDifferenceOnB(t *testing.T) string {
	t.Helper()
	id := f.standalone(t)
	f.count(t, id, ana, prodA, 10)
	f.count(t, id, ana, prodB, 5)
	f.count(t, id, beto, prodA, 10)
	f.count(t, id, beto, prodB, 7)
	_, err := f.sessions.ConfirmDifferences(context.Background(), empresa, admin, id)
	require.NoError(t, err)
	return id
}

func (f *fixture) baseline(t *testing.T, product, sector string) decimal.Decimal {
	t.Helper()
	b, ok := f.store.Baseline(empresa, product, sector)
	require.True(t, ok)
	return b.Quantity
}
