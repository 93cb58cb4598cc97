package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/guardian"
	"blacklink/internal/service"
)

// AdminCreateUser provisions a user from query parameters, the bootstrap
// path. Duplicates answer 409, unlike the public registration.
func AdminCreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Query("username")
		email := c.Query("email")
		planID := c.Query("plan", "free")

		u, err := svc.CreateAdmin(c.UserContext(), username, email, planID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUsernameRequired):
				return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
			case errors.Is(err, service.ErrInvalidPlan):
				return writeError(c, fiber.StatusBadRequest, "INVALID_PLAN", "Plano inválido. Use: free, pro ou don")
			case errors.Is(err, service.ErrUsernameTaken):
				handle := strings.ToLower(strings.TrimSpace(username))
				return writeError(c, fiber.StatusConflict, "USERNAME_TAKEN", fmt.Sprintf("Usuário '%s' já existe", handle))
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"plan":     u.Plan,
			"status":   "created",
		})
	}
}

// ingestError translates the auto-ingest sentinels. Plan gates answer 403
// with the gate spelled out.
func ingestError(c *fiber.Ctx, err error) error {
	var limitErr *service.PlanLimitError
	switch {
	case errors.As(err, &limitErr):
		return writeError(c, fiber.StatusForbidden, "PLAN_LIMIT_REACHED",
			fmt.Sprintf("Limite atingido: plano %s permite até %d produtos.", strings.ToUpper(limitErr.Plan), limitErr.Limit))
	case errors.Is(err, service.ErrIngestNotAllowed):
		return writeError(c, fiber.StatusForbidden, "INGEST_NOT_ALLOWED", "Ingestão automática disponível apenas para planos PRO ou DON.")
	case errors.Is(err, service.ErrFeaturedNotAllowed):
		return writeError(c, fiber.StatusForbidden, "FEATURED_NOT_ALLOWED", "Destaque disponível apenas para planos PRO ou DON.")
	case errors.Is(err, service.ErrURLRequired):
		return writeError(c, fiber.StatusBadRequest, "URL_REQUIRED", "url é obrigatória")
	case errors.Is(err, service.ErrUnsupportedURL):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_URL", "URL não é um anúncio do Mercado Livre")
	case errors.Is(err, service.ErrListingUnreadable):
		return writeError(c, fiber.StatusUnprocessableEntity, "LISTING_UNREADABLE", "Não foi possível extrair os dados do anúncio")
	case errors.Is(err, service.ErrUsernameRequired):
		return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Usuário não encontrado")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// AdminIngest imports a Mercado Livre listing as a product for plans with
// auto-ingest.
func AdminIngest(svc service.IngestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.IngestRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		p, err := svc.IngestProduct(c.UserContext(), req)
		if err != nil {
			return ingestError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GuardianTick runs one link-guardian sweep on demand and reports it.
func GuardianTick(sweeper guardian.Sweeper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := sweeper.Sweep(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
