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

func TestCreateStandalone_UnConteoAbiertoPorSector(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	f.standalone(t)

	_, err := f.sessions.CreateStandalone(context.Background(), empresa, admin, dto.CreateSessionRequest{
		SectorID: sector1, Assignee1: ana, Assignee2: carla,
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreateStandalone_MismoContadorDosVeces(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	_, err := f.sessions.CreateStandalone(context.Background(), empresa, admin, dto.CreateSessionRequest{
		SectorID: sector1, Assignee1: ana, Assignee2: ana,
	})
	assert.True(t, errors.Is(err, domain.ErrSameAssignee))
}

func TestAssignCounters_SoloAntesDeContar(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.standalone(t)

	s, err := f.sessions.AssignCounters(ctx, empresa, admin, id, dto.AssignCountersRequest{Assignee1: ana, Assignee2: carla})
	require.NoError(t, err)
	assert.Equal(t, carla, s.Assignee2)

	f.count(t, id, carla, prodA, 10)
	_, err = f.sessions.AssignCounters(ctx, empresa, admin, id, dto.AssignCountersRequest{Assignee1: ana, Assignee2: beto})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = f.counts.SubmitCount(ctx, empresa, beto, id, dto.SubmitCountRequest{ProductID: prodA, Quantity: dec(10)})
	assert.True(t, errors.Is(err, domain.ErrNotAssigned), "beto ya no es contador")
}

func TestConfirmDifferences_SoloDesdeVerificacion(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.standalone(t)

	_, err := f.sessions.ConfirmDifferences(context.Background(), empresa, admin, id)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestDifferences_ListaSoloDisputas(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)

	diffs, err := f.sessions.Differences(context.Background(), empresa, id)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, prodB, diffs[0].ProductID)
	assert.True(t, diffs[0].Difference.Equal(dec(2)))
}

func TestActiveForUser(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	_, err := f.events.CreateEvent(ctx, empresa, admin, twoSectors())
	require.NoError(t, err)

	mine, err := f.sessions.ActiveForUser(ctx, empresa, beto)
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Total, "beto cuenta en ambos sectores")

	mine, err = f.sessions.ActiveForUser(ctx, empresa, ana)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	s1 := mine.Items[0].ID

	f.count(t, s1, ana, prodA, 10)
	f.count(t, s1, ana, prodB, 5)
	f.count(t, s1, beto, prodA, 10)
	f.count(t, s1, beto, prodB, 5)

	mine, err = f.sessions.ActiveForUser(ctx, empresa, ana)
	require.NoError(t, err)
	assert.Zero(t, mine.Total, "las sesiones cerradas no se listan")

	mine, err = f.sessions.ActiveForUser(ctx, empresa, admin)
	require.NoError(t, err)
	assert.Zero(t, mine.Total)
}

func TestCreateStandalone_UnSoloContador(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	s, err := f.sessions.CreateStandalone(ctx, empresa, admin, dto.CreateSessionRequest{SectorID: sector1, Assignee1: ana})
	require.NoError(t, err)
	assert.Empty(t, s.Assignee2)

	f.count(t, s.ID, ana, prodA, 10)
	_, err = f.counts.SubmitCount(ctx, empresa, beto, s.ID, dto.SubmitCountRequest{ProductID: prodA, Quantity: dec(10)})
	assert.True(t, errors.Is(err, domain.ErrNotAssigned), "el slot vacío no admite escrituras")

	// completar el slot libre no cambia a nadie, se permite con la sesión en curso
	assigned, err := f.sessions.AssignCounters(ctx, empresa, admin, s.ID, dto.AssignCountersRequest{Assignee1: ana, Assignee2: beto})
	require.NoError(t, err)
	assert.Equal(t, beto, assigned.Assignee2)

	res := f.count(t, s.ID, beto, prodA, 10)
	assert.Equal(t, string(entity.EntryStateVerified), res.Entry.State)

	_, err = f.sessions.AssignCounters(ctx, empresa, admin, s.ID, dto.AssignCountersRequest{Assignee1: carla, Assignee2: beto})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "un contador que ya contó no se reemplaza")
}
