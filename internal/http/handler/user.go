package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/model"
	"blacklink/internal/service"
)

// userError translates user-service sentinels for the auth and profile routes.
func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Usuário BlackLink não encontrado.")
	case errors.Is(err, service.ErrUsernameTaken):
		return writeError(c, fiber.StatusBadRequest, "USERNAME_TAKEN", "Username já está em uso.")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// Login resolves a handle into its profile. There are no passwords and no
// tokens; the panel trusts the handle.
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := svc.GetProfile(c.UserContext(), c.Query("username"))
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(profile)
	}
}

// GetMe returns the profile behind a handle, the panel bootstrap call.
func GetMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := svc.GetProfile(c.UserContext(), c.Params("username"))
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(profile)
	}
}

// CreateUser registers a profile from a full JSON payload.
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u model.User
		if err := c.BodyParser(&u); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		profile, err := svc.Register(c.UserContext(), &u)
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(profile)
	}
}

// ListUsers returns profiles with an optional ?plan= filter, paginated with
// limit and offset.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), c.Query("plan"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetUser returns one profile with its products. Mounted both on the API
// path and on the public /u/:username alias.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := svc.GetProfile(c.UserContext(), c.Params("username"))
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(profile)
	}
}

// UpdateUser applies a partial profile update.
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd model.UserUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		profile, err := svc.UpdateProfile(c.UserContext(), c.Params("username"), upd)
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(profile)
	}
}

// DeleteUser removes a profile and, through the schema, its products.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("username")); err != nil {
			return userError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
