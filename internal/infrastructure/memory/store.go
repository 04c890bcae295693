package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

var _ conteo.TxRunner = (*Store)(nil)

// Store persistencia en memoria con transacciones serializables: cada Run trabaja sobre una copia
// del estado y la publica solo si fn termina sin error.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	seq      int64
	order    map[string]int64
	events   map[string]entity.InventoryEvent
	sessions map[string]entity.SectorSession
	entries  map[string]entity.CountEntry // session|product
	rounds   map[string]entity.RecountRound
	subs     map[string]entity.RecountSubmission
	stock    map[string]entity.StockBaseline // company|sector|product
	audit    []entity.AuditRecord
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		order:    make(map[string]int64),
		events:   make(map[string]entity.InventoryEvent),
		sessions: make(map[string]entity.SectorSession),
		entries:  make(map[string]entity.CountEntry),
		rounds:   make(map[string]entity.RecountRound),
		subs:     make(map[string]entity.RecountSubmission),
		stock:    make(map[string]entity.StockBaseline),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.order {
		c.order[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.rounds {
		c.rounds[k] = v
	}
	for k, v := range s.subs {
		c.subs[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.audit = append([]entity.AuditRecord(nil), s.audit...)
	return c
}

func (s *state) touch(id string) {
	if _, ok := s.order[id]; ok {
		return
	}
	s.seq++
	s.order[id] = s.seq
}

// Run ejecuta fn con repositorios sobre una copia del estado; Commit si no hay error.
func (st *Store) Run(ctx context.Context, fn func(r conteo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	work := st.state.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	st.state = work
	return nil
}

func reposFor(s *state) conteo.TxRepos {
	return conteo.TxRepos{
		Events:   &eventRepo{s: s},
		Sessions: &sessionRepo{s: s},
		Entries:  &entryRepo{s: s},
		Rounds:   &roundRepo{s: s},
		Stock:    &stockRepo{s: s},
		Audit:    &auditRepo{s: s},
	}
}

// SeedStock carga stock base (fixtures y pruebas).
func (st *Store) SeedStock(baselines ...entity.StockBaseline) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, b := range baselines {
		st.state.stock[stockKey(b.CompanyID, b.SectorID, b.ProductID)] = b
	}
}

// Baseline devuelve el stock base actual de un producto en un sector.
func (st *Store) Baseline(companyID, productID, sectorID string) (entity.StockBaseline, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	b, ok := st.state.stock[stockKey(companyID, sectorID, productID)]
	return b, ok
}

// AuditRecords devuelve la bitácora completa en orden de inserción.
func (st *Store) AuditRecords() []entity.AuditRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]entity.AuditRecord(nil), st.state.audit...)
}

// Session devuelve la sesión tal como está confirmada.
func (st *Store) Session(id string) (entity.SectorSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.state.sessions[id]
	return s, ok
}

// Event devuelve el inventario tal como está confirmado.
func (st *Store) Event(id string) (entity.InventoryEvent, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.state.events[id]
	return e, ok
}
