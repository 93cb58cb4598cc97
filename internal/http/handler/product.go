package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/model"
	"blacklink/internal/service"
)

// productError translates product-service sentinels, including the plan cap
// refusal with its plan and limit spelled out.
func productError(c *fiber.Ctx, err error) error {
	var limitErr *service.PlanLimitError
	switch {
	case errors.As(err, &limitErr):
		return writeError(c, fiber.StatusForbidden, "PLAN_LIMIT_REACHED",
			fmt.Sprintf("Limite de produtos do plano %s atingido (%d).", strings.ToUpper(limitErr.Plan), limitErr.Limit))
	case errors.Is(err, service.ErrProductNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Produto não encontrado.")
	case errors.Is(err, service.ErrTitleRequired):
		return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title é obrigatório")
	case errors.Is(err, service.ErrUsernameRequired):
		return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Usuário BlackLink não encontrado.")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListProducts returns every product of one owner, newest first.
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.ListForUser(c.UserContext(), c.Params("username"))
		if err != nil {
			return productError(c, err)
		}
		return c.JSON(products)
	}
}

// CreateProduct adds a product to an owner's showcase, subject to the plan's
// product cap.
func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.ProductUpdate
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		p, err := svc.CreateForUser(c.UserContext(), c.Params("username"), in)
		if err != nil {
			return productError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdateProduct applies a partial update to one product.
func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var upd model.ProductUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		p, err := svc.Update(c.UserContext(), int64(id), upd)
		if err != nil {
			return productError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProduct removes one product.
func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), int64(id)); err != nil {
			return productError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
