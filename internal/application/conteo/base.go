package conteo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

const defaultSubmitRetries = 3

// base estado y utilidades comunes a todos los casos de uso.
type base struct {
	Deps
}

func newBase(d Deps) base {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.SubmitRetries < 1 {
		d.SubmitRetries = defaultSubmitRetries
	}
	if d.Policy.MaxRounds < 1 {
		d.Policy.MaxRounds = conteo.DefaultMaxRounds
	}
	if d.Policy.TieBreak == "" {
		d.Policy.TieBreak = conteo.TieBreakAdminOverride
	}
	return base{Deps: d}
}

func (b *base) now() time.Time {
	return b.Now().UTC()
}

// journal acumula las transiciones de una transacción para notificarlas tras el commit.
type journal struct {
	items []Transition
}

func (j *journal) reset() { j.items = j.items[:0] }

// transition aplica la transición a la sesión y la registra.
func (j *journal) transition(s *entity.SectorSession, to entity.SessionState, actor string, now time.Time) error {
	from := s.State
	if err := s.TransitionTo(to, now); err != nil {
		return err
	}
	j.items = append(j.items, Transition{
		CompanyID: s.CompanyID,
		SessionID: s.ID,
		EventID:   s.EventID,
		SectorID:  s.SectorID,
		From:      from,
		To:        to,
		ActorID:   actor,
		At:        now,
	})
	return nil
}

// publish despacha las transiciones relevantes. Los errores solo se registran.
func (b *base) publish(ctx context.Context, j *journal) {
	for _, t := range j.items {
		b.Log.Info().
			Str("session_id", t.SessionID).
			Str("event_id", t.EventID).
			Str("from", string(t.From)).
			Str("to", string(t.To)).
			Str("actor_id", t.ActorID).
			Msg("transición de sesión")

		if b.Notifier == nil || !notifiable(t.To) {
			continue
		}
		if err := b.Notifier.Notify(ctx, t); err != nil {
			b.Log.Warn().Err(err).Str("session_id", t.SessionID).Str("to", string(t.To)).Msg("no se pudo notificar la transición")
		}
	}
}

func notifiable(s entity.SessionState) bool {
	switch s {
	case entity.SessionStateAwaitingVerification, entity.SessionStateHasDifferences, entity.SessionStateClosed:
		return true
	}
	return false
}

// withRetry reintenta fn ante ConcurrentModificationError con una espera creciente.
// Cualquier otro error se devuelve de inmediato.
func (b *base) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= b.SubmitRetries; attempt++ {
		if attempt > 0 {
			b.Log.Debug().Str("op", op).Int("intento", attempt).Err(err).Msg("reintentando por modificación concurrente")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 5 * time.Millisecond):
			}
		}
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	b.Log.Warn().Str("op", op).Int("reintentos", b.SubmitRetries).Err(err).Msg("modificación concurrente persistente")
	return err
}

// ── Carga y validación ───────────────────────────────────────────────────────

func lockSession(ctx context.Context, r TxRepos, companyID, sessionID string) (*entity.SectorSession, error) {
	s, err := r.Sessions.GetForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, domain.Unknown("sesión", sessionID)
	}
	return s, nil
}

func loadSession(ctx context.Context, r TxRepos, companyID, sessionID string) (*entity.SectorSession, error) {
	s, err := r.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, domain.Unknown("sesión", sessionID)
	}
	return s, nil
}

// requireOpen rechaza escrituras sobre sesiones cerradas.
func requireOpen(s *entity.SectorSession) error {
	if s.State.IsTerminal() {
		return &domain.SessionClosedError{SessionID: s.ID}
	}
	return nil
}

func requireAssignee(s *entity.SectorSession, userID string) (entity.CountSlot, error) {
	slot := s.SlotFor(userID)
	if slot == entity.SlotNone {
		return slot, &domain.NotAssignedError{SessionID: s.ID, UserID: userID}
	}
	return slot, nil
}

// Las cantidades se guardan como NUMERIC(18,4): hasta 4 decimales y 14 dígitos enteros.
const quantityScale = 4

var maxQuantity = decimal.New(1, 14)

func validQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	if !q.Equal(q.Round(quantityScale)) {
		return fmt.Errorf("%w: la cantidad admite máximo %d decimales", domain.ErrInvalidInput, quantityScale)
	}
	if q.GreaterThanOrEqual(maxQuantity) {
		return fmt.Errorf("%w: la cantidad excede el máximo permitido", domain.ErrInvalidInput)
	}
	return nil
}

func (b *base) checkCompany(ctx context.Context, companyID string) error {
	c, err := b.Companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if c == nil || !c.IsActive() {
		return domain.Unknown("empresa", companyID)
	}
	return nil
}

func (b *base) checkSector(ctx context.Context, companyID, sectorID string) error {
	s, err := b.Sectors.GetByID(ctx, sectorID)
	if err != nil {
		return err
	}
	if s == nil || s.CompanyID != companyID || !s.Active {
		return domain.Unknown("sector", sectorID)
	}
	return nil
}

func (b *base) checkProduct(ctx context.Context, companyID, productID string) error {
	p, err := b.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || p.CompanyID != companyID {
		return domain.Unknown("producto", productID)
	}
	return nil
}

// checkAssignees valida los contadores indicados: usuarios activos de la empresa y distintos entre sí.
// Un slot vacío queda sin asignar; nadie puede escribir en él hasta que se asigne.
func (b *base) checkAssignees(ctx context.Context, companyID, a1, a2 string) error {
	if a1 != "" && a1 == a2 {
		return domain.ErrSameAssignee
	}
	for _, id := range []string{a1, a2} {
		if id == "" {
			continue
		}
		u, err := b.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil || u.CompanyID != companyID || !u.IsActive() {
			return domain.Unknown("usuario", id)
		}
	}
	return nil
}

// ── Avance automático, cierre y estado del inventario ────────────────────────

func productIDs(baselines []*entity.StockBaseline) []string {
	ids := make([]string, 0, len(baselines))
	for _, b := range baselines {
		ids = append(ids, b.ProductID)
	}
	return ids
}

// advance evalúa la sesión tras una escritura: cuando ningún producto espera conteos pasa a
// CLOSED (con ajuste del stock) si todo coincide, o a AWAITING_VERIFICATION si queda alguna diferencia.
// Solo actúa desde IN_PROGRESS.
func (b *base) advance(ctx context.Context, r TxRepos, s *entity.SectorSession, actor string, j *journal, now time.Time) error {
	if s.State != entity.SessionStateInProgress {
		return nil
	}
	baselines, err := r.Stock.ListBySector(ctx, s.CompanyID, s.SectorID)
	if err != nil {
		return err
	}
	entries, err := r.Entries.ListBySession(ctx, s.ID)
	if err != nil {
		return err
	}
	c := conteo.EvaluateCompletion(productIDs(baselines), entries)
	switch {
	case !c.AllSettled:
		return nil
	case c.AllResolved:
		_, err := b.commitSession(ctx, r, s, entries, c, actor, j, now)
		return err
	}
	return j.transition(s, entity.SessionStateAwaitingVerification, actor, now)
}

// closeSession evalúa la completitud y, si todo está resuelto, aplica el cierre.
func (b *base) closeSession(ctx context.Context, r TxRepos, s *entity.SectorSession, actor string, j *journal, now time.Time) ([]*entity.AuditRecord, error) {
	baselines, err := r.Stock.ListBySector(ctx, s.CompanyID, s.SectorID)
	if err != nil {
		return nil, err
	}
	entries, err := r.Entries.ListBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	c := conteo.EvaluateCompletion(productIDs(baselines), entries)
	if c.Products == 0 {
		return nil, fmt.Errorf("%w: la sesión no tiene productos para cerrar", domain.ErrInvalidState)
	}
	return b.commitSession(ctx, r, s, entries, c, actor, j, now)
}

// commitSession escribe las cantidades finales en el stock base y cierra la sesión en la misma
// transacción. Rechaza con UnresolvedEntriesError antes de tocar cualquier fila.
func (b *base) commitSession(
	ctx context.Context,
	r TxRepos,
	s *entity.SectorSession,
	entries []*entity.CountEntry,
	c conteo.Completion,
	actor string,
	j *journal,
	now time.Time,
) ([]*entity.AuditRecord, error) {
	if !c.AllResolved {
		return nil, &domain.UnresolvedEntriesError{ProductIDs: c.Unresolved}
	}
	if !s.State.CanTransitionTo(entity.SessionStateClosed) {
		return nil, fmt.Errorf("%w: no se puede cerrar una sesión en %s", domain.ErrInvalidState, s.State)
	}

	// orden fijo de bloqueo para evitar interbloqueos entre cierres concurrentes
	sorted := make([]*entity.CountEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i].ProductID < sorted[k].ProductID })

	records := make([]*entity.AuditRecord, 0)
	for _, e := range sorted {
		baseline, err := r.Stock.GetForUpdate(ctx, s.CompanyID, e.ProductID, s.SectorID)
		if err != nil {
			return nil, err
		}
		previous := decimal.Zero
		if baseline != nil {
			previous = baseline.Quantity
		}
		final := *e.FinalQuantity
		delta := final.Sub(previous)
		if delta.IsZero() {
			continue
		}
		if err := r.Stock.Upsert(ctx, &entity.StockBaseline{
			CompanyID: s.CompanyID,
			ProductID: e.ProductID,
			SectorID:  s.SectorID,
			Quantity:  final,
			UpdatedAt: now,
		}); err != nil {
			return nil, err
		}
		rec := &entity.AuditRecord{
			ID:               uuid.New().String(),
			CompanyID:        s.CompanyID,
			SessionID:        s.ID,
			EventID:          s.EventID,
			SectorID:         s.SectorID,
			ProductID:        e.ProductID,
			PreviousQuantity: previous,
			NewQuantity:      final,
			Delta:            delta,
			Resolution:       e.Resolution,
			UserID:           actor,
			CreatedAt:        now,
		}
		if err := r.Audit.Create(ctx, rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	s.ClosedBy = actor
	if err := j.transition(s, entity.SessionStateClosed, actor, now); err != nil {
		return nil, err
	}
	b.Log.Info().
		Str("session_id", s.ID).
		Int("productos", len(sorted)).
		Int("ajustes", len(records)).
		Msg("sesión cerrada y stock base actualizado")
	return records, nil
}

// saveSession persiste la sesión y, si pertenece a un inventario, re-deriva el estado de éste.
// Orden de bloqueo: sesión y luego inventario.
func saveSession(ctx context.Context, r TxRepos, s *entity.SectorSession, now time.Time) error {
	if err := r.Sessions.Update(ctx, s); err != nil {
		return err
	}
	if s.EventID == "" {
		return nil
	}
	ev, err := r.Events.GetForUpdate(ctx, s.EventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return domain.Unknown("inventario", s.EventID)
	}
	sessions, err := r.Sessions.ListByEvent(ctx, ev.ID)
	if err != nil {
		return err
	}
	derived := conteo.DeriveEventState(sessionStates(sessions))
	if derived == ev.State {
		return nil
	}
	ev.State = derived
	ev.UpdatedAt = now
	if derived == entity.EventStateClosed {
		t := now
		ev.ClosedAt = &t
	}
	return r.Events.Update(ctx, ev)
}

func sessionStates(sessions []*entity.SectorSession) []entity.SessionState {
	states := make([]entity.SessionState, 0, len(sessions))
	for _, s := range sessions {
		states = append(states, s.State)
	}
	return states
}
