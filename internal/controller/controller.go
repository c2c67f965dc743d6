package controller

import (
	"errors"

	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserId reads the user id the jwt middleware stored in locals.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing authentication")
	}
	return userId, nil
}

func serviceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		return serverutils.ErrorResponse(ctx, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return serverutils.ErrorResponse(ctx, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, err.Error())
	default:
		return serverutils.ErrorResponse(ctx, fiber.StatusInternalServerError, err.Error())
	}
}

func parseIdParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
