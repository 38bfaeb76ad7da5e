package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/auth"
	"github.com/spec-kit/internship-portal/internal/service"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

func callerFrom(c *fiber.Ctx) (service.Caller, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return service.Caller{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Caller{UserID: principal.UserID, Role: principal.Role}, nil
}
