package controller

import (
	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MemoryController struct {
	memoryService service.IMemoryService
}

func NewMemoryController(memoryService service.IMemoryService) *MemoryController {
	return &MemoryController{memoryService: memoryService}
}

func (c *MemoryController) RegisterRoutes(router fiber.Router, jwtMiddleware fiber.Handler) {
	memories := router.Group("/memory", jwtMiddleware)
	memories.Post("/", c.Add)
	memories.Post("/query", c.Query)
	memories.Post("/forget", c.Forget)
}

func (c *MemoryController) Add(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.AddMemoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	memory, err := c.memoryService.Add(ctx.Context(), userId, req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Memory stored", memory)
}

func (c *MemoryController) Query(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.QueryMemoriesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	results, err := c.memoryService.Query(ctx.Context(), userId, req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Memories fetched", results)
}

func (c *MemoryController) Forget(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ForgetMemoriesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := c.memoryService.Forget(ctx.Context(), userId, req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Forget pass completed", result)
}
