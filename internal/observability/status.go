package observability

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

// UnmatchedRoute labels requests that reached no registered route.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the registered route pattern that served the request, so
// metric keys stay bounded by the route table rather than by client input.
func RouteLabel(c *fiber.Ctx, err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) &&
		(fiberErr.Code == fiber.StatusNotFound || fiberErr.Code == fiber.StatusMethodNotAllowed) {
		return UnmatchedRoute
	}
	r := c.Route()
	// Fiber hands back a synthetic route without handlers when none was matched.
	if r == nil || r.Path == "" || len(r.Handlers) == 0 {
		return UnmatchedRoute
	}
	return r.Path
}

func statusFromError(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperrors.StatusOf(err)
}
