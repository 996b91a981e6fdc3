package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"mapprint/internal/app"
	"mapprint/internal/chrome"
	u "mapprint/internal/utils"
)

func main() {
	cfg := u.LoadConfig()
	u.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	u.SetLogLevel(cfg.Logger.Level)

	// maxprocs.Set only fails on an invalid GOMAXPROCS env; the runtime default stays.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		u.Info(fmt.Sprintf(format, args...))
	}))

	app := app.SetupApp(cfg, chrome.NewRenderer(cfg))

	idleConnsClosed := make(chan struct{})
	if err := startServer(app, cfg, idleConnsClosed); err != nil {
		os.Exit(1)
	}
	<-idleConnsClosed
}

// startServer runs the Fiber app until it fails to listen or a shutdown
// signal arrives. It closes idleConnsClosed in both cases.
func startServer(app *fiber.App, cfg u.Config, idleConnsClosed chan struct{}) error {
	defer close(idleConnsClosed)

	// Listen for OS termination signals before accepting connections.
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigint)

	addr := cfg.Address()
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	u.Info("Starting http server", "addr", addr, "route", cfg.Map.PrintRoute)
	u.Info(fmt.Sprintf("navigate to : http://%s%s?zoom=15&lon=46.78&lat=6.66", addr, cfg.Map.PrintRoute))

	select {
	case err := <-listenErr:
		if err == nil {
			return nil
		}
		if errors.Is(err, syscall.EADDRINUSE) {
			u.Error("Address is already in use", "addr", addr, "error", err)
		} else {
			u.Error("Unknown error trying to listen", "addr", addr, "error", err)
		}
		return err
	case <-sigint:
	}

	u.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		u.Error("Server forced to shutdown", "error", err)
	}

	u.Info("Server stopped cleanly")
	return nil
}
