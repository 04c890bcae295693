package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var (
	_ repository.InventoryEventRepository = (*eventRepo)(nil)
	_ repository.SectorSessionRepository  = (*sessionRepo)(nil)
	_ repository.CountEntryRepository     = (*entryRepo)(nil)
	_ repository.RecountRoundRepository   = (*roundRepo)(nil)
	_ repository.StockRepository          = (*stockRepo)(nil)
	_ repository.AuditRecordRepository    = (*auditRepo)(nil)
)

func stockKey(companyID, sectorID, productID string) string {
	return companyID + "|" + sectorID + "|" + productID
}

func entryKey(sessionID, productID string) string {
	return sessionID + "|" + productID
}

// ── Inventarios ──────────────────────────────────────────────────────────────

type eventRepo struct{ s *state }

func (r *eventRepo) Create(_ context.Context, e *entity.InventoryEvent) error {
	if _, ok := r.s.events[e.ID]; ok {
		return &domain.ConcurrentModificationError{Resource: "inventario", ID: e.ID}
	}
	r.s.events[e.ID] = *e
	r.s.touch(e.ID)
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id string) (*entity.InventoryEvent, error) {
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *eventRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryEvent, error) {
	return r.GetByID(ctx, id)
}

func (r *eventRepo) Update(_ context.Context, e *entity.InventoryEvent) error {
	if _, ok := r.s.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.events[e.ID] = *e
	return nil
}

// ── Sesiones ─────────────────────────────────────────────────────────────────

type sessionRepo struct{ s *state }

func (r *sessionRepo) Create(ctx context.Context, ss *entity.SectorSession) error {
	busy, err := r.ExistsActive(ctx, ss.CompanyID, ss.EventID, ss.SectorID)
	if err != nil {
		return err
	}
	if busy {
		return &domain.ConcurrentModificationError{Resource: "sesión", ID: ss.SectorID}
	}
	r.s.sessions[ss.ID] = *ss
	r.s.touch(ss.ID)
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id string) (*entity.SectorSession, error) {
	ss, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &ss, nil
}

func (r *sessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SectorSession, error) {
	return r.GetByID(ctx, id)
}

func (r *sessionRepo) Update(_ context.Context, ss *entity.SectorSession) error {
	if _, ok := r.s.sessions[ss.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sessions[ss.ID] = *ss
	return nil
}

func (r *sessionRepo) ListByEvent(_ context.Context, eventID string) ([]*entity.SectorSession, error) {
	return r.list(func(ss entity.SectorSession) bool { return ss.EventID == eventID }), nil
}

func (r *sessionRepo) ListActiveByAssignee(_ context.Context, companyID, userID string) ([]*entity.SectorSession, error) {
	return r.list(func(ss entity.SectorSession) bool {
		return ss.CompanyID == companyID && ss.State != entity.SessionStateClosed && ss.IsAssignee(userID)
	}), nil
}

func (r *sessionRepo) ExistsActive(_ context.Context, companyID, eventID, sectorID string) (bool, error) {
	for _, ss := range r.s.sessions {
		if ss.CompanyID == companyID && ss.EventID == eventID && ss.SectorID == sectorID && ss.State != entity.SessionStateClosed {
			return true, nil
		}
	}
	return false, nil
}

func (r *sessionRepo) list(match func(entity.SectorSession) bool) []*entity.SectorSession {
	out := make([]*entity.SectorSession, 0)
	for _, ss := range r.s.sessions {
		if match(ss) {
			v := ss
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, k int) bool { return r.s.order[out[i].ID] < r.s.order[out[k].ID] })
	return out
}

// ── Registros de conteo ──────────────────────────────────────────────────────

type entryRepo struct{ s *state }

func (r *entryRepo) GetForUpdate(_ context.Context, sessionID, productID string) (*entity.CountEntry, error) {
	e, ok := r.s.entries[entryKey(sessionID, productID)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *entryRepo) Create(_ context.Context, e *entity.CountEntry) error {
	k := entryKey(e.SessionID, e.ProductID)
	if _, ok := r.s.entries[k]; ok {
		return &domain.ConcurrentModificationError{Resource: "registro", ID: e.ProductID}
	}
	e.Version = 1
	r.s.entries[k] = *e
	return nil
}

func (r *entryRepo) Update(_ context.Context, e *entity.CountEntry) error {
	k := entryKey(e.SessionID, e.ProductID)
	cur, ok := r.s.entries[k]
	if !ok || cur.Version != e.Version {
		return &domain.ConcurrentModificationError{Resource: "registro", ID: e.ProductID}
	}
	e.Version++
	r.s.entries[k] = *e
	return nil
}

func (r *entryRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.CountEntry, error) {
	out := make([]*entity.CountEntry, 0)
	for _, e := range r.s.entries {
		if e.SessionID == sessionID {
			v := e
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ProductID < out[k].ProductID })
	return out, nil
}

// ── Rondas y reconteos ───────────────────────────────────────────────────────

type roundRepo struct{ s *state }

func (r *roundRepo) MaxRoundNumber(_ context.Context, sessionID string) (int, error) {
	max := 0
	for _, rd := range r.s.rounds {
		if rd.SessionID == sessionID && rd.RoundNumber > max {
			max = rd.RoundNumber
		}
	}
	return max, nil
}

func (r *roundRepo) CreateRound(_ context.Context, rd *entity.RecountRound) error {
	for _, cur := range r.s.rounds {
		if cur.SessionID == rd.SessionID && cur.RoundNumber == rd.RoundNumber && cur.ProductID == rd.ProductID {
			return &domain.ConcurrentModificationError{Resource: "ronda", ID: rd.ProductID}
		}
	}
	r.s.rounds[rd.ID] = *rd
	return nil
}

func (r *roundRepo) GetRound(_ context.Context, sessionID string, roundNumber int, productID string) (*entity.RecountRound, error) {
	for _, rd := range r.s.rounds {
		if rd.SessionID == sessionID && rd.RoundNumber == roundNumber && rd.ProductID == productID {
			v := rd
			return &v, nil
		}
	}
	return nil, nil
}

func (r *roundRepo) ListRounds(_ context.Context, sessionID string) ([]*entity.RecountRound, error) {
	out := make([]*entity.RecountRound, 0)
	for _, rd := range r.s.rounds {
		if rd.SessionID == sessionID {
			v := rd
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].RoundNumber != out[k].RoundNumber {
			return out[i].RoundNumber < out[k].RoundNumber
		}
		return out[i].ProductID < out[k].ProductID
	})
	return out, nil
}

func (r *roundRepo) UpdateRound(_ context.Context, rd *entity.RecountRound) error {
	if _, ok := r.s.rounds[rd.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.rounds[rd.ID] = *rd
	return nil
}

func (r *roundRepo) CreateSubmission(_ context.Context, sub *entity.RecountSubmission) error {
	r.s.subs[sub.ID] = *sub
	r.s.touch(sub.ID)
	return nil
}

func (r *roundRepo) GetSubmission(_ context.Context, id string) (*entity.RecountSubmission, error) {
	sub, ok := r.s.subs[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *roundRepo) ListSubmissions(_ context.Context, roundID string) ([]*entity.RecountSubmission, error) {
	out := make([]*entity.RecountSubmission, 0)
	for _, sub := range r.s.subs {
		if sub.RoundID == roundID {
			v := sub
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, k int) bool { return r.s.order[out[i].ID] < r.s.order[out[k].ID] })
	return out, nil
}

func (r *roundRepo) UpdateSubmission(_ context.Context, sub *entity.RecountSubmission) error {
	if _, ok := r.s.subs[sub.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.subs[sub.ID] = *sub
	return nil
}

// ── Stock base ───────────────────────────────────────────────────────────────

type stockRepo struct{ s *state }

func (r *stockRepo) ListBySector(_ context.Context, companyID, sectorID string) ([]*entity.StockBaseline, error) {
	out := make([]*entity.StockBaseline, 0)
	for _, b := range r.s.stock {
		if b.CompanyID == companyID && b.SectorID == sectorID {
			v := b
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ProductID < out[k].ProductID })
	return out, nil
}

func (r *stockRepo) Get(_ context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error) {
	b, ok := r.s.stock[stockKey(companyID, sectorID, productID)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, companyID, productID, sectorID string) (*entity.StockBaseline, error) {
	return r.Get(ctx, companyID, productID, sectorID)
}

func (r *stockRepo) Upsert(_ context.Context, b *entity.StockBaseline) error {
	r.s.stock[stockKey(b.CompanyID, b.SectorID, b.ProductID)] = *b
	return nil
}

// ── Bitácora ─────────────────────────────────────────────────────────────────

type auditRepo struct{ s *state }

func (r *auditRepo) Create(_ context.Context, rec *entity.AuditRecord) error {
	r.s.audit = append(r.s.audit, *rec)
	return nil
}

func (r *auditRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.AuditRecord, error) {
	out := make([]*entity.AuditRecord, 0)
	for _, rec := range r.s.audit {
		if rec.SessionID == sessionID {
			v := rec
			out = append(out, &v)
		}
	}
	return out, nil
}
