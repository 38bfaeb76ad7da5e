package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/api/dto"
	"github.com/spec-kit/internship-portal/internal/service"
)

// AuthHandler exposes signup, login and token verification.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.SignupResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{Token: session.Token, User: dto.NewUserResponse(session.User)})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	session, err := h.auth.Verify(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}

	return c.JSON(dto.VerifyResponse{Valid: true, User: dto.NewUserResponse(session.User), Token: session.Token})
}
