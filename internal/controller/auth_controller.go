package controller

import (
	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) RegisterRoutes(router fiber.Router, jwtMiddleware fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/signup", c.Signup)
	auth.Post("/login", c.Login)
	auth.Post("/logout", jwtMiddleware, c.Logout)

	users := router.Group("/users", jwtMiddleware)
	users.Get("/me", c.Me)
}

func (c *AuthController) Signup(ctx *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	user, err := c.authService.Signup(ctx.Context(), req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Signup successful", user)
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}

	token, err := c.authService.Login(ctx.Context(), req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "Login successful", token)
}

// Logout is stateless; tokens simply expire. The endpoint exists so
// clients have a uniform call to clear their session against.
func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	return serverutils.SuccessResponse(ctx, "Logout successful", nil)
}

func (c *AuthController) Me(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	user, err := c.authService.GetMe(ctx.Context(), userId)
	if err != nil {
		return serviceError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, "User fetched", user)
}
