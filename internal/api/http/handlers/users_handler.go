package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/api/dto"
	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/service"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

// UsersHandler exposes profile and role endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetProfile(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}

// UpdateProfile handles PUT /api/users/update-profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateProfile(c.UserContext(), caller, service.ProfileUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Branch:     req.Branch,
		CGPA:       (*string)(req.CGPA),
		Year:       req.Year,
		University: req.University,
		Location:   req.Location,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

// SetRole handles PUT /api/users/:id/role.
func (h *UsersHandler) SetRole(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.users.SetRole(c.UserContext(), caller, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewUserResponse(user)})
}
