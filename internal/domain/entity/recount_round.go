package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundStatus situación de un producto dentro de una ronda de reconteo.
type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "OPEN"      // faltan reconteos
	RoundStatusResolved  RoundStatus = "RESOLVED"  // dos reconteos vigentes coinciden
	RoundStatusDisagreed RoundStatus = "DISAGREED" // dos reconteos vigentes difieren
	RoundStatusExhausted RoundStatus = "EXHAUSTED" // difieren y se alcanzó el tope de rondas
)

// RecountRound ronda de reconteo de un producto. RoundNumber es global por sesión:
// todos los productos reabiertos en la misma pasada comparten número.
type RecountRound struct {
	ID               string
	SessionID        string
	ProductID        string
	RoundNumber      int
	OpenedBy         string
	PreviousCount1   *decimal.Decimal // valores del registro antes de reabrirlo
	PreviousCount2   *decimal.Decimal
	Status           RoundStatus
	ResolvedQuantity *decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RecountSubmission un reconteo enviado por un contador en una ronda.
// Retracted es una lápida: las filas retractadas se conservan para auditoría y se excluyen
// explícitamente de la resolución.
type RecountSubmission struct {
	ID          string
	RoundID     string
	SessionID   string
	ProductID   string
	RoundNumber int
	UserID      string
	Slot        CountSlot
	Quantity    decimal.Decimal
	Retracted   bool
	RetractedBy string
	RetractedAt *time.Time
	CreatedAt   time.Time
}

// Retract marca la lápida.
func (s *RecountSubmission) Retract(by string, now time.Time) {
	if s.Retracted {
		return
	}
	t := now
	s.Retracted = true
	s.RetractedBy = by
	s.RetractedAt = &t
}

// LiveSubmissions filtra los reconteos no retractados.
func LiveSubmissions(subs []*RecountSubmission) []*RecountSubmission {
	live := make([]*RecountSubmission, 0, len(subs))
	for _, s := range subs {
		if !s.Retracted {
			live = append(live, s)
		}
	}
	return live
}
