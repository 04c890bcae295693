//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	reglas "github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/conteo-inventario/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Base de datos efímera: un contenedor PostgreSQL por test con migraciones aplicadas
// ──────────────────────────────────────────────────────────────────────────────

type testDB struct {
	pool *pgxpool.Pool
	dsn  string
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("conteo_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	v, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return &testDB{pool: pool, dsn: dsn}
}

const (
	empresa = "empresa-1"
	admin   = "admin-1"
	ana     = "ana"
	beto    = "beto"
	sector  = "sector-1"
	prodA   = "A"
	prodB   = "B"
)

func (db *testDB) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO companies (id, name, status) VALUES ('empresa-1', 'Bodegas SAS', 'active')`,
		`INSERT INTO users (id, company_id, email, role, status) VALUES
			('admin-1', 'empresa-1', 'admin@x.co', 'admin', 'active'),
			('ana', 'empresa-1', 'ana@x.co', 'bodeguero', 'active'),
			('beto', 'empresa-1', 'beto@x.co', 'bodeguero', 'active')`,
		`INSERT INTO sectors (id, company_id, name) VALUES ('sector-1', 'empresa-1', 'Pasillo 1')`,
		`INSERT INTO products (id, company_id, sku, name) VALUES
			('A', 'empresa-1', 'SKU-A', 'Tornillo'),
			('B', 'empresa-1', 'SKU-B', 'Tuerca')`,
		`INSERT INTO stock_baselines (company_id, sector_id, product_id, quantity) VALUES
			('empresa-1', 'sector-1', 'A', 10),
			('empresa-1', 'sector-1', 'B', 5)`,
	}
	for _, s := range stmts {
		_, err := db.pool.Exec(ctx, s)
		require.NoError(t, err)
	}
}

func (db *testDB) deps() conteo.Deps {
	return conteo.Deps{
		Tx:        postgres.NewTxRunner(db.pool),
		Companies: postgres.NewCompanyRepository(db.pool),
		Users:     postgres.NewUserRepository(db.pool),
		Products:  postgres.NewProductRepository(db.pool),
		Sectors:   postgres.NewSectorRepository(db.pool),
		Policy:    reglas.DefaultPolicy(),
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo sobre PostgreSQL
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_FlujoConDiferenciaYCierre(t *testing.T) {
	db := newTestDB(t)
	db.seed(t)
	ctx := context.Background()
	deps := db.deps()
	sessions := conteo.NewSessionUseCase(deps)
	counts := conteo.NewCountUseCase(deps)
	recounts := conteo.NewRecountUseCase(deps)
	commits := conteo.NewCommitUseCase(deps)

	s, err := sessions.CreateStandalone(ctx, empresa, admin, dto.CreateSessionRequest{SectorID: sector, Assignee1: ana, Assignee2: beto})
	require.NoError(t, err)

	_, err = sessions.CreateStandalone(ctx, empresa, admin, dto.CreateSessionRequest{SectorID: sector, Assignee1: ana, Assignee2: beto})
	assert.True(t, errors.Is(err, domain.ErrConflict), "índice parcial de sesiones abiertas")

	for _, c := range []struct {
		user, product string
		qty           int64
	}{{ana, prodA, 10}, {ana, prodB, 5}, {beto, prodA, 10}, {beto, prodB, 7}} {
		_, err := counts.SubmitCount(ctx, empresa, c.user, s.ID, dto.SubmitCountRequest{ProductID: c.product, Quantity: dec(c.qty)})
		require.NoError(t, err)
	}

	_, err = sessions.ConfirmDifferences(ctx, empresa, admin, s.ID)
	require.NoError(t, err)
	opened, err := recounts.OpenRound(ctx, empresa, admin, s.ID, dto.OpenRoundRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{prodB}, opened.ProductIDs)

	first, err := recounts.SubmitRecount(ctx, empresa, ana, s.ID, dto.SubmitRecountRequest{Round: 1, ProductID: prodB, Quantity: dec(6)})
	require.NoError(t, err)
	_, err = recounts.Retract(ctx, empresa, admin, first.Submission.ID)
	require.NoError(t, err)
	_, err = recounts.SubmitRecount(ctx, empresa, ana, s.ID, dto.SubmitRecountRequest{Round: 1, ProductID: prodB, Quantity: dec(7)})
	require.NoError(t, err)
	res, err := recounts.SubmitRecount(ctx, empresa, beto, s.ID, dto.SubmitRecountRequest{Round: 1, ProductID: prodB, Quantity: dec(7)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStateClosed), res.Session.State, "el reconteo coincidente cierra la sesión")

	stock := postgres.NewStockRepository(db.pool)
	b, err := stock.Get(ctx, empresa, prodB, sector)
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(dec(7)))

	trail, err := commits.AuditTrail(ctx, empresa, s.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1, "A no cambió: sin registro")
	assert.Equal(t, prodB, trail[0].ProductID)
	assert.True(t, trail[0].Delta.Equal(dec(2)))

	again, err := commits.Commit(ctx, empresa, admin, s.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyClosed)
	assert.Len(t, again.Records, 1)

	detail, err := sessions.Get(ctx, empresa, s.ID)
	require.NoError(t, err)
	require.Len(t, detail.Rounds, 1)
	require.Len(t, detail.Rounds[0].Submissions, 3)
	assert.True(t, detail.Rounds[0].Submissions[0].Retracted, "el retractado sigue en la bitácora")
}

func TestPostgres_EscritoresConcurrentes(t *testing.T) {
	db := newTestDB(t)
	db.seed(t)
	ctx := context.Background()
	deps := db.deps()
	deps.SubmitRetries = 5
	sessions := conteo.NewSessionUseCase(deps)
	counts := conteo.NewCountUseCase(deps)

	s, err := sessions.CreateStandalone(ctx, empresa, admin, dto.CreateSessionRequest{SectorID: sector, Assignee1: ana, Assignee2: beto})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, user := range []string{ana, beto} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := counts.SubmitCount(ctx, empresa, u, s.ID, dto.SubmitCountRequest{ProductID: prodA, Quantity: dec(10)})
			errs <- err
		}(user)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries := postgres.NewCountEntryRepository(db.pool)
	list, err := entries.ListBySession(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "un solo registro por producto")
	e := list[0]
	require.NotNil(t, e.Count1)
	require.NotNil(t, e.Count2)
	assert.Equal(t, entity.EntryStateVerified, e.State)
}

func TestPostgres_SinContadoresYAperturasConcurrentes(t *testing.T) {
	db := newTestDB(t)
	db.seed(t)
	ctx := context.Background()
	deps := db.deps()
	sessions := conteo.NewSessionUseCase(deps)
	counts := conteo.NewCountUseCase(deps)
	recounts := conteo.NewRecountUseCase(deps)

	s, err := sessions.CreateStandalone(ctx, empresa, admin, dto.CreateSessionRequest{SectorID: sector})
	require.NoError(t, err)
	stored, err := postgres.NewSectorSessionRepository(db.pool).GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Assignee1, "columna NULL se lee como vacío")
	assert.Empty(t, stored.Assignee2)

	_, err = counts.SubmitCount(ctx, empresa, ana, s.ID, dto.SubmitCountRequest{ProductID: prodA, Quantity: dec(10)})
	assert.True(t, errors.Is(err, domain.ErrNotAssigned))

	_, err = sessions.AssignCounters(ctx, empresa, admin, s.ID, dto.AssignCountersRequest{Assignee1: ana, Assignee2: beto})
	require.NoError(t, err)

	for _, c := range []struct {
		user, product, qty string
	}{{ana, prodA, "10"}, {ana, prodB, "5.1234"}, {beto, prodA, "10"}, {beto, prodB, "7"}} {
		_, err := counts.SubmitCount(ctx, empresa, c.user, s.ID, dto.SubmitCountRequest{
			ProductID: c.product, Quantity: decimal.RequireFromString(c.qty),
		})
		require.NoError(t, err)
	}
	_, err = sessions.ConfirmDifferences(ctx, empresa, admin, s.ID)
	require.NoError(t, err)

	const n = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opened, err := recounts.OpenRound(ctx, empresa, admin, s.ID, dto.OpenRoundRequest{})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, opened.RoundNumber)
		}()
	}
	wg.Wait()
	require.Equal(t, []int{1}, numbers)
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrInvalidState), err)
	}

	detail, err := sessions.Get(ctx, empresa, s.ID)
	require.NoError(t, err)
	require.Len(t, detail.Rounds, 1)
	require.NotNil(t, detail.Rounds[0].PreviousCount1)
	assert.True(t, detail.Rounds[0].PreviousCount1.Equal(decimal.RequireFromString("5.1234")), "NUMERIC(18,4) conserva los 4 decimales")
}

func TestPostgres_VersionOptimista(t *testing.T) {
	db := newTestDB(t)
	db.seed(t)
	ctx := context.Background()

	sessions := postgres.NewSectorSessionRepository(db.pool)
	now := time.Now().UTC()
	sess := &entity.SectorSession{
		ID: uuid.New().String(), CompanyID: empresa, Kind: entity.SessionKindStandalone, SectorID: sector,
		State: entity.SessionStatePending, Assignee1: ana, Assignee2: beto, CreatedBy: admin,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, sessions.Create(ctx, sess))

	repo := postgres.NewCountEntryRepository(db.pool)
	e := entity.NewCountEntry(uuid.New().String(), sess.ID, prodA, now)
	require.NoError(t, repo.Create(ctx, e))
	assert.Equal(t, 1, e.Version)

	dup := entity.NewCountEntry(uuid.New().String(), sess.ID, prodA, now)
	assert.True(t, errors.Is(repo.Create(ctx, dup), domain.ErrConcurrentModification))

	stale := *e
	e.SetSlot(entity.SlotOne, ana, dec(4), now)
	require.NoError(t, repo.Update(ctx, e))
	assert.Equal(t, 2, e.Version)

	stale.SetSlot(entity.SlotTwo, beto, dec(4), now)
	assert.True(t, errors.Is(repo.Update(ctx, &stale), domain.ErrConcurrentModification))
}
