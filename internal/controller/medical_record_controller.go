package controller

import (
	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MedicalRecordController struct {
	recordService service.IMedicalRecordService
}

func NewMedicalRecordController(recordService service.IMedicalRecordService) *MedicalRecordController {
	return &MedicalRecordController{recordService: recordService}
}

func (c *MedicalRecordController) RegisterRoutes(router fiber.Router, jwtMiddleware fiber.Handler) {
	records := router.Group("/medical-record", jwtMiddleware)
	records.Post("/", c.Create)
	records.Get("/", c.List)
	records.Get("/:recordId", c.Get)
	records.Delete("/:recordId", c.Delete)
}

func (c *MedicalRecordController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateMedicalRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	record, err := c.recordService.Create(ctx.Context(), userId, req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Medical record created", record)
}

func (c *MedicalRecordController) List(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	records, err := c.recordService.List(ctx.Context(), userId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Medical records fetched", records)
}

func (c *MedicalRecordController) Get(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	recordId, err := parseIdParam(ctx, "recordId")
	if err != nil {
		return err
	}

	record, err := c.recordService.Get(ctx.Context(), userId, recordId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Medical record fetched", record)
}

func (c *MedicalRecordController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	recordId, err := parseIdParam(ctx, "recordId")
	if err != nil {
		return err
	}

	if err := c.recordService.Delete(ctx.Context(), userId, recordId); err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Medical record deleted", nil)
}
