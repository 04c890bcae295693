package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/conteo"
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
)

// CountHandler conteos, reconteos y cierre de sesiones (protegido).
type CountHandler struct {
	counts   *conteo.CountUseCase
	recounts *conteo.RecountUseCase
	commits  *conteo.CommitUseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(counts *conteo.CountUseCase, recounts *conteo.RecountUseCase, commits *conteo.CommitUseCase) *CountHandler {
	return &CountHandler{counts: counts, recounts: recounts, commits: commits}
}

// SubmitCount godoc
// @Summary      Registrar conteo inicial de un producto
// @Description  El slot (count1/count2) lo determina el usuario del token, nunca el cuerpo.
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la sesión"
// @Param        body  body  dto.SubmitCountRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.CountResultResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/counts/sessions/{id}/entries [post]
func (h *CountHandler) SubmitCount(c *fiber.Ctx) error {
	var in dto.SubmitCountRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.counts.SubmitCount(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// OpenRound godoc
// @Summary      Abrir ronda de reconteo
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la sesión"
// @Param        body  body  dto.OpenRoundRequest  false "product_ids (vacío = todos en disputa), override"
// @Success      201   {object}  dto.OpenRoundResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/counts/sessions/{id}/rounds [post]
func (h *CountHandler) OpenRound(c *fiber.Ctx) error {
	var in dto.OpenRoundRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &in); !ok {
			return err
		}
	}
	out, err := h.recounts.OpenRound(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SubmitRecount reconteo de un producto en la ronda indicada.
func (h *CountHandler) SubmitRecount(c *fiber.Ctx) error {
	var in dto.SubmitRecountRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.recounts.SubmitRecount(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Retract marca un reconteo como retractado; la fila se conserva.
func (h *CountHandler) Retract(c *fiber.Ctx) error {
	out, err := h.recounts.Retract(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Override fija la cantidad final de un producto en disputa.
func (h *CountHandler) Override(c *fiber.Ctx) error {
	var in dto.OverrideEntryRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.recounts.OverrideEntry(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), c.Params("productId"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Commit godoc
// @Summary      Cerrar sesión y aplicar ajustes al stock base
// @Description  Idempotente: sobre una sesión cerrada devuelve la bitácora existente.
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CommitResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/sessions/{id}/commit [post]
func (h *CountHandler) Commit(c *fiber.Ctx) error {
	out, err := h.commits.Commit(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// AuditTrail ajustes aplicados por el cierre de la sesión.
func (h *CountHandler) AuditTrail(c *fiber.Ctx) error {
	list, err := h.commits.AuditTrail(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}
