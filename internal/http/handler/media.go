package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/service"
)

// UploadMedia stores a multipart file (field name: file) in the object store
// and returns its key plus a presigned URL.
func UploadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		m, err := svc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrStorageDisabled) {
				return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "object storage is not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// ResolveMedia returns a fresh presigned URL for a stored key. Keys contain
// slashes (media/<uuid>.<ext>), so the route uses a wildcard parameter.
func ResolveMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		url, err := svc.Resolve(c.UserContext(), key)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStorageDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "object storage is not configured")
			case errors.Is(err, service.ErrKeyRequired):
				return writeError(c, fiber.StatusBadRequest, "KEY_REQUIRED", "key is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"key": key, "url": url})
	}
}

// DeleteMedia removes a stored object by key.
func DeleteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if err := svc.Delete(c.UserContext(), key); err != nil {
			switch {
			case errors.Is(err, service.ErrStorageDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "object storage is not configured")
			case errors.Is(err, service.ErrKeyRequired):
				return writeError(c, fiber.StatusBadRequest, "KEY_REQUIRED", "key is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
