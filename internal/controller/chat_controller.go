package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

func (c *ChatController) RegisterRoutes(router fiber.Router, jwtMiddleware fiber.Handler) {
	chat := router.Group("/chat", jwtMiddleware)
	chat.Post("/", c.CreateConversation)
	chat.Get("/", c.ListConversations)
	chat.Get("/:conversationId", c.GetConversation)
	chat.Patch("/:conversationId/rename", c.RenameConversation)
	chat.Delete("/:conversationId", c.DeleteConversation)
	chat.Post("/:conversationId", c.Chat)
	chat.Post("/:conversationId/stream", c.StreamChat)
}

func (c *ChatController) CreateConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	conversation, err := c.chatService.CreateConversation(ctx.Context(), userId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Conversation created", conversation)
}

func (c *ChatController) ListConversations(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	conversations, err := c.chatService.ListConversations(ctx.Context(), userId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Conversations fetched", conversations)
}

func (c *ChatController) GetConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	conversation, err := c.chatService.GetConversation(ctx.Context(), userId, conversationId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Conversation fetched", conversation)
}

func (c *ChatController) RenameConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	var req dto.RenameConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	conversation, err := c.chatService.RenameConversation(ctx.Context(), userId, conversationId, req.Title)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Conversation renamed", conversation)
}

func (c *ChatController) DeleteConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteConversation(ctx.Context(), userId, conversationId); err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Conversation deleted", nil)
}

func (c *ChatController) Chat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	response, err := c.chatService.SendChat(ctx.Context(), userId, conversationId, req.Message)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Chat completed", response)
}

// StreamChat answers over server-sent events. Tokens arrive as
// data: {"p": "..."} frames; the stream ends with data: [DONE] or a
// data: Error: line.
func (c *ChatController) StreamChat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	conversationId, err := parseIdParam(ctx, "conversationId")
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	// Ownership and persistence errors surface as normal JSON before
	// the SSE stream opens.
	eventsChan, err := c.chatService.StreamChat(ctx.Context(), userId, conversationId, req.Message)
	if err != nil {
		return serviceError(ctx, err)
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for event := range eventsChan {
			switch {
			case event.Err != nil:
				fmt.Fprintf(w, "data: Error: %s\n\n", event.Err.Error())
				w.Flush()
				return
			case event.Done:
				fmt.Fprint(w, "data: [DONE]\n\n")
				w.Flush()
				return
			default:
				frame, err := json.Marshal(map[string]string{"p": event.Token})
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", frame)
				w.Flush()
			}
		}
	})
	return nil
}
