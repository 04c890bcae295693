package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
)

// EventHandler inventarios completos (protegido).
type EventHandler struct {
	uc *conteo.EventUseCase
}

// NewEventHandler construye el handler.
func NewEventHandler(uc *conteo.EventUseCase) *EventHandler {
	return &EventHandler{uc: uc}
}

// Create godoc
// @Summary      Iniciar inventario completo
// @Description  Crea el inventario y una sesión de conteo por sector. Los contadores son opcionales.
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEventRequest  true  "nombre y sectores (assignee1/assignee2 opcionales)"
// @Success      201   {object}  dto.EventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts/events [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateEventRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateEvent(c.Context(), companyID, userID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Status godoc
// @Summary      Estado agregado del inventario
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del inventario"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/counts/events/{id} [get]
func (h *EventHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
