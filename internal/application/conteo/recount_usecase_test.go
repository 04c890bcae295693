package conteo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	reglas "github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

func TestOpenRound_SoloConDiferenciasConfirmadas(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.standalone(t)
	f.count(t, id, ana, prodA, 10)
	f.count(t, id, ana, prodB, 5)
	f.count(t, id, beto, prodA, 10)
	f.count(t, id, beto, prodB, 7)

	_, err := f.recounts.OpenRound(context.Background(), empresa, admin, id, dto.OpenRoundRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "AWAITING_VERIFICATION requiere confirmación previa")
}

func TestOpenRound_ProductoSinDiferencia(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(context.Background(), empresa, admin, id, dto.OpenRoundRequest{ProductIDs: []string{prodA}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestOpenRound_GuardaConteosPrevios(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(context.Background(), empresa, admin, id, dto.OpenRoundRequest{ProductIDs: []string{prodB}})
	require.NoError(t, err)

	detail, err := f.sessions.Get(context.Background(), empresa, id)
	require.NoError(t, err)
	require.Len(t, detail.Rounds, 1)
	r := detail.Rounds[0]
	assert.Equal(t, 1, r.RoundNumber)
	require.NotNil(t, r.PreviousCount1)
	require.NotNil(t, r.PreviousCount2)
	assert.True(t, r.PreviousCount1.Equal(dec(5)))
	assert.True(t, r.PreviousCount2.Equal(dec(7)))

	for _, e := range detail.Entries {
		switch e.ProductID {
		case prodA:
			assert.Equal(t, string(entity.EntryStateVerified), e.State, "los productos que coinciden no se tocan")
		case prodB:
			assert.Equal(t, string(entity.EntryStatePending), e.State)
			assert.Nil(t, e.Count1)
			assert.Nil(t, e.Count2)
		}
	}
}

func TestSubmitRecount_UsuarioNoAsignado(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)
	_, err := f.recounts.OpenRound(context.Background(), empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)

	_, err = f.recounts.SubmitRecount(context.Background(), empresa, carla, id, dto.SubmitRecountRequest{Round: 1, ProductID: prodB, Quantity: dec(7)})
	assert.True(t, errors.Is(err, domain.ErrNotAssigned))
}

func TestSubmitRecount_ReenvioRetractaElAnterior(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	id := f.withDifferenceOnB(t)
	_, err := f.recounts.OpenRound(context.Background(), empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)

	f.recount(t, id, ana, prodB, 1, 6)
	res := f.recount(t, id, ana, prodB, 1, 7)
	require.NotNil(t, res.Round)
	require.Len(t, res.Round.Submissions, 2, "el envío reemplazado se conserva")
	assert.True(t, res.Round.Submissions[0].Retracted)
	assert.False(t, res.Round.Submissions[1].Retracted)
	assert.True(t, res.Entry.Count1.Equal(dec(7)))
	assert.Equal(t, string(entity.RoundStatusOpen), res.Round.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Numeración de rondas, retracto y rondas superadas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecount_NumeracionMonotonaConRetracto(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)

	first := f.recount(t, id, ana, prodB, 1, 6)
	retracted, err := f.recounts.Retract(ctx, empresa, admin, first.Submission.ID)
	require.NoError(t, err)
	assert.True(t, retracted.Submission.Retracted)
	assert.Equal(t, admin, retracted.Submission.RetractedBy)
	assert.Nil(t, retracted.Entry.Count1, "el slot queda libre")

	// retractar dos veces no cambia nada
	_, err = f.recounts.Retract(ctx, empresa, admin, first.Submission.ID)
	require.NoError(t, err)

	f.recount(t, id, ana, prodB, 1, 6)
	res := f.recount(t, id, beto, prodB, 1, 8)
	assert.Equal(t, string(entity.RoundStatusDisagreed), res.Round.Status)
	assert.Equal(t, string(entity.SessionStateAwaitingVerification), res.Session.State, "el desacuerdo vuelve a verificación")

	_, err = f.sessions.ConfirmDifferences(ctx, empresa, admin, id)
	require.NoError(t, err)
	second, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.RoundNumber, "el retracto no reutiliza números")

	detail, err := f.sessions.Get(ctx, empresa, id)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.CurrentRound)
	require.Len(t, detail.Rounds, 2)
	assert.Less(t, detail.Rounds[0].RoundNumber, detail.Rounds[1].RoundNumber)
	require.Len(t, detail.Rounds[0].Submissions, 3, "los retractados quedan para auditoría")
	assert.True(t, detail.Rounds[0].Submissions[0].Retracted)
}

func TestRecount_RondaSuperada(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)
	first := f.recount(t, id, ana, prodB, 1, 6)
	f.recount(t, id, beto, prodB, 1, 8)
	_, err = f.sessions.ConfirmDifferences(ctx, empresa, admin, id)
	require.NoError(t, err)
	_, err = f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)

	_, err = f.recounts.SubmitRecount(ctx, empresa, ana, id, dto.SubmitRecountRequest{Round: 1, ProductID: prodB, Quantity: dec(7)})
	var stale *domain.StaleRoundError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, 1, stale.Requested)
	assert.Equal(t, 2, stale.Current)

	_, err = f.counts.SubmitCount(ctx, empresa, ana, id, dto.SubmitCountRequest{ProductID: prodB, Quantity: dec(7)})
	require.True(t, errors.As(err, &stale), "los conteos iniciales quedan congelados tras abrir rondas")
	assert.Equal(t, 0, stale.Requested)

	_, err = f.recounts.Retract(ctx, empresa, admin, first.Submission.ID)
	assert.True(t, errors.Is(err, domain.ErrStaleRound), "solo se retracta en la ronda vigente")

	_, err = f.recounts.SubmitRecount(ctx, empresa, ana, id, dto.SubmitRecountRequest{Round: 3, ProductID: prodB, Quantity: dec(7)})
	assert.True(t, errors.Is(err, domain.ErrUnknownReference), "una ronda futura no existe")
}

func TestOpenRound_AperturasConcurrentes(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	const n = 6
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
			opened, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
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

	require.Equal(t, []int{1}, numbers, "una sola apertura gana la carrera")
	require.Len(t, errs, n-1)
	for _, err := range errs {
		assert.True(t, errors.Is(err, domain.ErrInvalidState), "la sesión ya salió de HAS_DIFFERENCES")
	}

	detail, err := f.sessions.Get(ctx, empresa, id)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.CurrentRound)
	require.Len(t, detail.Rounds, 1)
	assert.Equal(t, prodB, detail.Rounds[0].ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tope de rondas y desempate
// ──────────────────────────────────────────────────────────────────────────────

func TestRecount_TopeDeRondasConAdministrador(t *testing.T) {
	f := newFixture(t, reglas.Policy{MaxRounds: 1, TieBreak: reglas.TieBreakAdminOverride})
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)
	f.recount(t, id, ana, prodB, 1, 6)
	res := f.recount(t, id, beto, prodB, 1, 8)
	assert.Equal(t, string(entity.RoundStatusExhausted), res.Round.Status)
	assert.Equal(t, string(entity.EntryStateDifferent), res.Entry.State)
	assert.Equal(t, string(entity.SessionStateAwaitingVerification), res.Session.State)

	_, err = f.sessions.ConfirmDifferences(ctx, empresa, admin, id)
	require.NoError(t, err)
	_, err = f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	var maxErr *domain.MaxRoundsExceededError
	require.True(t, errors.As(err, &maxErr))
	assert.Equal(t, 1, maxErr.Max)
	assert.Equal(t, 2, maxErr.Requested)

	opened, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{Override: true})
	require.NoError(t, err)
	assert.Equal(t, 2, opened.RoundNumber)
}

func TestRecount_DesempatePorElMasReciente(t *testing.T) {
	f := newFixture(t, reglas.Policy{MaxRounds: 1, TieBreak: reglas.TieBreakLatest})
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OpenRound(ctx, empresa, admin, id, dto.OpenRoundRequest{})
	require.NoError(t, err)
	f.recount(t, id, ana, prodB, 1, 6)
	res := f.recount(t, id, beto, prodB, 1, 8)

	assert.Equal(t, string(entity.RoundStatusExhausted), res.Round.Status)
	assert.Equal(t, string(entity.ResolutionLatest), res.Entry.Resolution)
	assert.Equal(t, string(entity.SessionStateClosed), res.Session.State)
	assert.True(t, f.baseline(t, prodB, sector1).Equal(dec(8)), "gana el reconteo de beto, el más reciente")
}

func TestOverrideEntry_ResuelveYPermiteCerrar(t *testing.T) {
	f := newFixture(t, reglas.DefaultPolicy())
	ctx := context.Background()
	id := f.withDifferenceOnB(t)

	_, err := f.recounts.OverrideEntry(ctx, empresa, admin, id, prodA, dto.OverrideEntryRequest{Quantity: dec(9)})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "A no está en disputa")

	res, err := f.recounts.OverrideEntry(ctx, empresa, admin, id, prodB, dto.OverrideEntryRequest{Quantity: dec(6)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.EntryStateVerified), res.Entry.State)
	assert.Equal(t, string(entity.ResolutionOverride), res.Entry.Resolution)
	assert.Equal(t, string(entity.SessionStateHasDifferences), res.Session.State, "fijar la cantidad no cierra la sesión")

	commit, err := f.commits.Commit(ctx, empresa, admin, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStateClosed), commit.Session.State)
	require.Len(t, commit.Records, 1)
	assert.Equal(t, string(entity.ResolutionOverride), commit.Records[0].Resolution)
	assert.True(t, f.baseline(t, prodB, sector1).Equal(dec(6)))
}
