package conteo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// EventUseCase orquesta un inventario completo: una sesión por sector y estado derivado de ellas.
type EventUseCase struct {
	base
}

// NewEventUseCase construye el caso de uso.
func NewEventUseCase(d Deps) *EventUseCase {
	return &EventUseCase{base: newBase(d)}
}

// CreateEvent crea el inventario y una sesión PENDING por cada sector indicado.
// Un sector no puede repetirse dentro del mismo inventario.
func (uc *EventUseCase) CreateEvent(ctx context.Context, companyID, adminID string, in dto.CreateEventRequest) (*dto.EventResponse, error) {
	if len(in.Sectors) == 0 {
		return nil, fmt.Errorf("%w: el inventario requiere al menos un sector", domain.ErrInvalidInput)
	}
	if err := uc.checkCompany(ctx, companyID); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(in.Sectors))
	for _, sa := range in.Sectors {
		if _, dup := seen[sa.SectorID]; dup {
			return nil, fmt.Errorf("%w: sector %s repetido", domain.ErrInvalidInput, sa.SectorID)
		}
		seen[sa.SectorID] = struct{}{}
		if err := uc.checkSector(ctx, companyID, sa.SectorID); err != nil {
			return nil, err
		}
		if err := uc.checkAssignees(ctx, companyID, sa.Assignee1, sa.Assignee2); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	ev := &entity.InventoryEvent{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		AdminID:   adminID,
		Name:      in.Name,
		State:     entity.EventStatePending,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sessions := make([]*entity.SectorSession, 0, len(in.Sectors))
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		sessions = sessions[:0]
		if err := r.Events.Create(ctx, ev); err != nil {
			return err
		}
		for _, sa := range in.Sectors {
			busy, err := r.Sessions.ExistsActive(ctx, companyID, ev.ID, sa.SectorID)
			if err != nil {
				return err
			}
			if busy {
				return fmt.Errorf("%w: el sector %s ya tiene un conteo abierto en este inventario", domain.ErrConflict, sa.SectorID)
			}
			s := &entity.SectorSession{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				EventID:   ev.ID,
				Kind:      entity.SessionKindEvent,
				SectorID:  sa.SectorID,
				State:     entity.SessionStatePending,
				Assignee1: sa.Assignee1,
				Assignee2: sa.Assignee2,
				CreatedBy: adminID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := r.Sessions.Create(ctx, s); err != nil {
				return err
			}
			sessions = append(sessions, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("event_id", ev.ID).Int("sectores", len(sessions)).Str("admin_id", adminID).Msg("inventario creado")
	return toEventResponse(ev, sessions), nil
}

// Status devuelve el inventario con su estado re-derivado de las sesiones en cada consulta.
func (uc *EventUseCase) Status(ctx context.Context, companyID, eventID string) (*dto.EventResponse, error) {
	var out *dto.EventResponse
	err := uc.Tx.Run(ctx, func(r TxRepos) error {
		ev, err := r.Events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if ev == nil || ev.CompanyID != companyID {
			return domain.Unknown("inventario", eventID)
		}
		sessions, err := r.Sessions.ListByEvent(ctx, ev.ID)
		if err != nil {
			return err
		}
		out = toEventResponse(ev, sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// toEventResponse el estado y los contadores se calculan siempre desde las sesiones, no desde ev.State.
func toEventResponse(ev *entity.InventoryEvent, sessions []*entity.SectorSession) *dto.EventResponse {
	states := sessionStates(sessions)
	counts := make(map[string]int)
	for st, n := range conteo.CountByState(states) {
		counts[string(st)] = n
	}
	return &dto.EventResponse{
		ID:          ev.ID,
		CompanyID:   ev.CompanyID,
		AdminID:     ev.AdminID,
		Name:        ev.Name,
		State:       string(conteo.DeriveEventState(states)),
		StateCounts: counts,
		Sessions:    toSessionList(sessions),
		StartedAt:   ev.StartedAt,
		ClosedAt:    ev.ClosedAt,
		CreatedAt:   ev.CreatedAt,
	}
}
