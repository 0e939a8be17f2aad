package gateway

import (
	"errors"

	"objectfs/core/storage"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, storage.ErrInvalidArgument), errors.Is(err, storage.ErrUnknownBackend):
		return fiber.StatusBadRequest
	case errors.Is(err, storage.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, storage.ErrAlreadyExists), errors.Is(err, storage.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, storage.ErrConnection), errors.Is(err, storage.ErrProtocolViolation):
		return fiber.StatusBadGateway
	case errors.Is(err, storage.ErrWouldBlock):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(ErrorResponse{
		Error: storage.Message(err),
		Kind:  storage.KindName(err),
	})
}
