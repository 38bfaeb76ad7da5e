package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/observability"
)

// bodyLimitSlack leaves room for multipart framing and text fields on top of the resume itself.
const bodyLimitSlack = 1 << 20

// NewApp builds the Fiber application with middlewares and routes registered.
func NewApp(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Upload.MaxBytes) + bodyLimitSlack,
		Immutable:    true,
		ReadTimeout:  30 * time.Second,
		ErrorHandler: ErrorHandler(logger),
	})
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	RegisterRoutes(app, routes)
	return app
}
