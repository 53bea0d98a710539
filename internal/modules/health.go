// Package modules wraps the long-running parts of the bot as mono modules so
// the application starts and stops them in one place.
package modules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HealthModule answers liveness probes. Every request gets a 200; /health
// also reports the status of the other modules.
type HealthModule struct {
	port   int
	checks []mono.HealthCheckableModule
	logger *slog.Logger
	app    *fiber.App
}

var _ mono.HealthCheckableModule = (*HealthModule)(nil)

func NewHealthModule(port int, logger *slog.Logger, checks ...mono.HealthCheckableModule) *HealthModule {
	return &HealthModule{port: port, checks: checks, logger: logger}
}

func (m *HealthModule) Name() string {
	return "health"
}

func (m *HealthModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{Healthy: false, Message: "HTTP server not initialized"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"port": m.port},
	}
}

func (m *HealthModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Get("/health", func(c *fiber.Ctx) error {
		report := make(map[string]mono.HealthStatus, len(m.checks))
		for _, check := range m.checks {
			report[check.Name()] = check.Health(c.UserContext())
		}
		return c.JSON(fiber.Map{"status": "ok", "modules": report})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func (m *HealthModule) Start(ctx context.Context) error {
	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.port)
	errChan := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start health server: %w", err)
	case <-time.After(100 * time.Millisecond):
		m.logger.Info("health server started", "addr", addr)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *HealthModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown health server: %w", err)
	}
	m.logger.Info("health server stopped")
	return nil
}
