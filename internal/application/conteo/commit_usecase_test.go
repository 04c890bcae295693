package conteo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	reglas "github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

func TestCommit_RechazadoConDiferencias(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)

	_, err := f.commits.Commit(context.Background(), empresa, admin, id)
	var unresolved *domain.UnresolvedEntriesError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{prodB}, unresolved.ProductIDs)

	assert.True(t, f.baseline(t, prodB, sector1).Equal(dec(5)), "stock base sin cambios")
	assert.True(t, f.baseline(t, prodA, sector1).Equal(dec(10)))
	assert.Empty(t, f.store.AuditRecords())
	s, ok := f.store.Session(id)
	require.True(t, ok)
	assert.Equal(t, entity.SessionStateHasDifferences, s.State)
}

func TestCommit_ProductoSinContar(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.standalone(t)
	f.count(t, id, ana, prodA, 10)
	f.count(t, id, beto, prodA, 10)

	_, err := f.commits.Commit(context.Background(), empresa, admin, id)
	var unresolved *domain.UnresolvedEntriesError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{prodB}, unresolved.ProductIDs, "B sin registro también bloquea el cierre")
}

func TestCommit_Idempotente(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.withDifferenceOnB(t)
	_, err := f.recounts.OverrideEntry(ctx, empresa, admin, id, prodB, dto.OverrideEntryRequest{Quantity: dec(7)})
	require.NoError(t, err)

	first, err := f.commits.Commit(ctx, empresa, admin, id)
	require.NoError(t, err)
	assert.False(t, first.AlreadyClosed)
	require.Len(t, first.Records, 1)

	second, err := f.commits.Commit(ctx, empresa, admin, id)
	require.NoError(t, err)
	assert.True(t, second.AlreadyClosed)
	require.Len(t, second.Records, 1)
	assert.Equal(t, first.Records[0].ID, second.Records[0].ID, "devuelve la bitácora previa")

	assert.Len(t, f.store.AuditRecords(), 1, "sin registros duplicados")
	assert.True(t, f.baseline(t, prodB, sector1).Equal(dec(7)), "sin deriva del stock base")

	trail, err := f.commits.AuditTrail(ctx, empresa, id)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestCommit_SesionSinProductos(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	f.catalog.AddSector(entity.Sector{ID: "vacio", CompanyID: empresa, Name: "Vacío", Active: true})
	s, err := f.sessions.CreateStandalone(context.Background(), empresa, admin, dto.CreateSessionRequest{
		SectorID: "vacio", Assignee1: ana, Assignee2: beto,
	})
	require.NoError(t, err)

	_, err = f.commits.Commit(context.Background(), empresa, admin, s.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}
