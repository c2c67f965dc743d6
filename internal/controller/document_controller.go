package controller

import (
	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

func (c *DocumentController) RegisterRoutes(router fiber.Router, jwtMiddleware fiber.Handler) {
	documents := router.Group("/document", jwtMiddleware)
	documents.Post("/", c.Create)

	router.Get("/chat/:conversationId/documents", jwtMiddleware, c.ListForConversation)
}

func (c *DocumentController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	document, err := c.documentService.Create(ctx.Context(), userId, req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Document created", document)
}

func (c *DocumentController) ListForConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	documents, err := c.documentService.ListForConversation(ctx.Context(), userId, conversationId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Documents fetched", documents)
}
