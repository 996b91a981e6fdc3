package app

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"mapprint/internal/handlers"
	u "mapprint/internal/utils"
)

// SetupApp creates and configures a new Fiber app instance
func SetupApp(cfg u.Config, renderer handlers.Renderer) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	RegisterMiddleware(app, cfg)
	RegisterRoutes(app, cfg, renderer)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		u.Info("Route not found",
			"ip", handlers.ClientIP(c),
			"url", c.OriginalURL(),
			"method", c.Method(),
			"status", fiber.StatusNotFound,
		)
		return fiber.NewError(fiber.StatusNotFound, "Route not found : "+strconv.Quote(c.OriginalURL()))
	})

	return app
}

// errorHandler renders every failure as {"message": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}

	if code != fiber.StatusNotFound {
		u.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)
	}

	return c.Status(code).JSON(fiber.Map{"message": msg})
}

// RegisterRoutes mounts all route handlers to the app
func RegisterRoutes(app *fiber.App, cfg u.Config, renderer handlers.Renderer) {
	if cfg.Server.EnableMonitor {
		app.Get("/monitor", monitor.New(monitor.Config{Title: "mapprint monitor"}))
	}

	svc := handlers.NewPrintMapServiceWith(cfg, renderer)

	// Get also registers HEAD; Matches lets only GET through.
	app.Get("/*", func(c *fiber.Ctx) error {
		if !svc.Matches(c.Method(), c.OriginalURL()) {
			return c.Next()
		}
		return svc.HandlePrintMap(c)
	})
}
