package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/service"
)

// catalogError translates storefront sentinels. Dead or deactivated products
// read as unavailable, not as missing.
func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_USERNAME", "Username inválido.")
	case errors.Is(err, service.ErrProductNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Produto não encontrado.")
	case errors.Is(err, service.ErrProductUnavailable):
		return writeError(c, fiber.StatusNotFound, "PRODUCT_UNAVAILABLE", "Produto indisponível.")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// Storefront serves the public showcase of one handle: searchable, sortable,
// dead links hidden. Visiting an unknown handle creates its free profile.
func Storefront(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Storefront(c.UserContext(), c.Params("username"), service.StorefrontQuery{
			Q:         c.Query("q"),
			OrderBy:   c.Query("order_by", "id"),
			Direction: c.Query("direction", "desc"),
		})
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(view)
	}
}

// StorefrontProduct serves one product's public detail with up to three other
// live products of the same owner.
func StorefrontProduct(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		view, err := svc.ProductDetail(c.UserContext(), c.Params("username"), int64(id))
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(view)
	}
}

// OutRedirect sends the visitor to the affiliate URL behind a product.
func OutRedirect(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		url, err := svc.ResolveOut(c.UserContext(), int64(id))
		if err != nil {
			return catalogError(c, err)
		}
		return c.Redirect(url)
	}
}

// ListPublicProducts serves the raw JSON product list of one handle.
func ListPublicProducts(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.PublicProducts(c.UserContext(), c.Params("username"))
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(products)
	}
}
