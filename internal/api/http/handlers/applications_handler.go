package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/api/dto"
	"github.com/spec-kit/internship-portal/internal/service"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

// ApplicationsHandler manages internship application endpoints.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Create POST /api/applications (multipart).
func (h *ApplicationsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	resume, err := c.FormFile("resume")
	if err != nil {
		resume = nil
	}

	app, err := h.service.Create(c.UserContext(), caller, service.ApplicationCreateInput{
		Position:          c.FormValue("position"),
		CoverLetter:       c.FormValue("coverLetter"),
		ExpectedStartDate: c.FormValue("expectedStartDate"),
		Resume:            resume,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewApplicationResponse(app))
}

// List GET /api/applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	filter := service.ApplicationListFilter{Position: c.Query("position")}
	if raw := c.Query("status"); raw != "" {
		filter.Statuses = strings.Split(raw, ",")
	}
	apps, err := h.service.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApplicationList(apps))
}

// ListMine GET /api/applications/student/mine.
func (h *ApplicationsHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListMine(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApplicationList(apps))
}

// Get GET /api/applications/:id.
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	app, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApplicationResponse(app))
}

// UpdateStatus PUT /api/applications/:id/status.
func (h *ApplicationsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	result, err := h.service.UpdateStatus(c.UserContext(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUpdateStatusResponse(result.Application, result.Notification))
}

// Delete DELETE /api/applications/:id.
func (h *ApplicationsHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Application deleted successfully"})
}

// Resume GET /api/applications/resume/:filename.
func (h *ApplicationsHandler) Resume(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	filename := c.Params("filename")
	file, err := h.service.OpenResume(c.UserContext(), caller, filename)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.SendStream(file, int(info.Size()))
}
