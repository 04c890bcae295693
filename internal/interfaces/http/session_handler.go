package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
)

// SessionHandler sesiones de conteo por sector (protegido).
type SessionHandler struct {
	uc *conteo.SessionUseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *conteo.SessionUseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// CreateStandalone godoc
// @Summary      Conteo independiente de un sector
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSessionRequest  true  "sector_id y contadores opcionales"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts/sessions [post]
func (h *SessionHandler) CreateStandalone(c *fiber.Ctx) error {
	var in dto.CreateSessionRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateStandalone(c.Context(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AssignCounters godoc
// @Summary      Asignar contadores (reemplazar solo antes del primer conteo)
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la sesión"
// @Param        body  body  dto.AssignCountersRequest  true  "assignee1, assignee2"
// @Success      200   {object}  dto.SessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts/sessions/{id}/assignees [put]
func (h *SessionHandler) AssignCounters(c *fiber.Ctx) error {
	var in dto.AssignCountersRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.AssignCounters(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Mine sesiones abiertas del usuario autenticado.
func (h *SessionHandler) Mine(c *fiber.Ctx) error {
	out, err := h.uc.ActiveForUser(c.Context(), GetCompanyID(c), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de la sesión con registros y rondas
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/counts/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Differences registros con conteos en desacuerdo.
func (h *SessionHandler) Differences(c *fiber.Ctx) error {
	list, err := h.uc.Differences(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// Verify confirma las diferencias (AWAITING_VERIFICATION -> HAS_DIFFERENCES).
func (h *SessionHandler) Verify(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmDifferences(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
