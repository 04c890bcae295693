package conteo

import "github.com/jhoicas/conteo-inventario/internal/domain/entity"

// DeriveEventState calcula el estado del inventario a partir de sus sesiones:
// CLOSED solo si todas están cerradas; IN_PROGRESS si alguna salió de PENDING; PENDING en otro caso.
// No hay retroceso automático: el resultado depende únicamente de los estados actuales.
func DeriveEventState(states []entity.SessionState) entity.EventState {
	if len(states) == 0 {
		return entity.EventStatePending
	}
	allClosed := true
	anyStarted := false
	for _, s := range states {
		if s != entity.SessionStateClosed {
			allClosed = false
		}
		if s != entity.SessionStatePending {
			anyStarted = true
		}
	}
	switch {
	case allClosed:
		return entity.EventStateClosed
	case anyStarted:
		return entity.EventStateInProgress
	}
	return entity.EventStatePending
}

// CountByState resume cuántas sesiones hay en cada estado.
func CountByState(states []entity.SessionState) map[entity.SessionState]int {
	out := make(map[entity.SessionState]int, 5)
	for _, s := range states {
		out[s]++
	}
	return out
}
