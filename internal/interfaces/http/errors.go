package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
)

// fail traduce los errores del motor de conteos a código HTTP y ErrorResponse.
func fail(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		unresolved *domain.UnresolvedEntriesError
		stale      *domain.StaleRoundError
		maxRounds  *domain.MaxRoundsExceededError
		unknown    *domain.UnknownReferenceError
		notInScope *domain.ProductNotInScopeError
	)
	switch {
	case errors.As(err, &unresolved):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "UNRESOLVED_ENTRIES", Message: err.Error(),
			Details: fiber.Map{"product_ids": unresolved.ProductIDs},
		}
	case errors.As(err, &stale):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "STALE_ROUND", Message: err.Error(),
			Details: fiber.Map{"requested": stale.Requested, "current": stale.Current},
		}
	case errors.As(err, &maxRounds):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "MAX_ROUNDS_EXCEEDED", Message: err.Error(),
			Details: fiber.Map{"max": maxRounds.Max, "requested": maxRounds.Requested},
		}
	case errors.As(err, &unknown):
		return fiber.StatusNotFound, dto.ErrorResponse{
			Code: "UNKNOWN_REFERENCE", Message: err.Error(),
			Details: fiber.Map{"kind": unknown.Kind, "id": unknown.ID},
		}
	case errors.As(err, &notInScope):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{
			Code: "PRODUCT_NOT_IN_SCOPE", Message: err.Error(),
			Details: fiber.Map{"product_id": notInScope.ProductID, "sector_id": notInScope.SectorID},
		}
	case errors.Is(err, domain.ErrNotAssigned):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "NOT_ASSIGNED", Message: err.Error()}
	case errors.Is(err, domain.ErrSessionClosed):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "SESSION_CLOSED", Message: err.Error()}
	case errors.Is(err, domain.ErrConcurrentModification):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrSameAssignee):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "SAME_ASSIGNEE", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
