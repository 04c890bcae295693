// Package notify publica las transiciones de estado de las sesiones de conteo.
package notify

import (
	"context"
	"errors"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

var (
	_ conteo.Notifier = (*LogNotifier)(nil)
	_ conteo.Notifier = Multi(nil)
)

// LogNotifier deja cada transición en el log estructurado. Canal por defecto cuando no hay Redis.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Component("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, t conteo.Transition) error {
	n.log.Info().
		Str("company_id", t.CompanyID).
		Str("session_id", t.SessionID).
		Str("event_id", t.EventID).
		Str("sector_id", t.SectorID).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Str("actor_id", t.ActorID).
		Time("at", t.At).
		Msg("transición de sesión")
	return nil
}

// Multi reparte la transición a todos los canales; un canal caído no impide avisar por los demás.
type Multi []conteo.Notifier

func (m Multi) Notify(ctx context.Context, t conteo.Transition) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
