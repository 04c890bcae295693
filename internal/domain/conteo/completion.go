package conteo

import (
	"sort"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// Completion resultado de evaluar los registros de una sesión contra los productos esperados del sector.
type Completion struct {
	Products    int
	AllSettled  bool     // ningún producto espera más conteos
	AllResolved bool     // todos tienen cantidad final
	Unresolved  []string // productos sin cantidad final, ordenados
}

// EvaluateCompletion cruza los productos esperados (stock base del sector) con los registros existentes.
// Un producto sin registro cuenta como no resuelto y no asentado.
func EvaluateCompletion(expected []string, entries []*entity.CountEntry) Completion {
	byProduct := make(map[string]*entity.CountEntry, len(entries))
	for _, e := range entries {
		byProduct[e.ProductID] = e
	}
	products := make(map[string]struct{}, len(expected)+len(entries))
	for _, p := range expected {
		products[p] = struct{}{}
	}
	for p := range byProduct {
		products[p] = struct{}{}
	}

	c := Completion{Products: len(products), AllSettled: len(products) > 0}
	for p := range products {
		e, ok := byProduct[p]
		if !ok || !e.IsSettled() {
			c.AllSettled = false
		}
		if !ok || !e.IsResolved() {
			c.Unresolved = append(c.Unresolved, p)
		}
	}
	sort.Strings(c.Unresolved)
	c.AllResolved = len(products) > 0 && len(c.Unresolved) == 0
	return c
}
