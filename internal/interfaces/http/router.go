package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Events    *conteo.EventUseCase
	Sessions  *conteo.SessionUseCase
	Counts    *conteo.CountUseCase
	Recounts  *conteo.RecountUseCase
	Commits   *conteo.CommitUseCase
	Companies repository.CompanyRepository
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token y empresa activa)
	counts := api.Group("/counts", AuthMiddleware(deps.JWTSecret), RequireActiveCompany(deps.Companies))

	adminOnly := RequireRole(entity.RoleAdmin)
	counters := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	eventHandler := NewEventHandler(deps.Events)
	counts.Post("/events", adminOnly, eventHandler.Create)
	counts.Get("/events/:id", eventHandler.Status)

	sessionHandler := NewSessionHandler(deps.Sessions)
	counts.Post("/sessions", adminOnly, sessionHandler.CreateStandalone)
	counts.Get("/sessions/mine", sessionHandler.Mine)
	counts.Get("/sessions/:id", sessionHandler.Get)
	counts.Put("/sessions/:id/assignees", adminOnly, sessionHandler.AssignCounters)
	counts.Get("/sessions/:id/differences", sessionHandler.Differences)
	counts.Post("/sessions/:id/verify", adminOnly, sessionHandler.Verify)

	countHandler := NewCountHandler(deps.Counts, deps.Recounts, deps.Commits)
	counts.Post("/sessions/:id/entries", counters, countHandler.SubmitCount)
	counts.Put("/sessions/:id/entries/:productId/override", adminOnly, countHandler.Override)
	counts.Post("/sessions/:id/rounds", adminOnly, countHandler.OpenRound)
	counts.Post("/sessions/:id/recounts", counters, countHandler.SubmitRecount)
	counts.Post("/sessions/:id/commit", adminOnly, countHandler.Commit)
	counts.Get("/sessions/:id/audit", countHandler.AuditTrail)
	counts.Post("/recounts/:id/retract", adminOnly, countHandler.Retract)
}
