package app

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	u "mapprint/internal/utils"
)

// RegisterMiddleware attaches global middleware to the app
func RegisterMiddleware(app *fiber.App, cfg u.Config) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(*fiber.Ctx) bool {
			return chromeAvailable(cfg)
		},
	}))
}

// chromeAvailable checks an explicitly configured Chrome binary. Without one,
// chromedp looks the browser up on PATH at render time.
func chromeAvailable(cfg u.Config) bool {
	if cfg.PDF.ChromePath == "" {
		return true
	}
	_, err := os.Stat(cfg.PDF.ChromePath)
	return err == nil
}
