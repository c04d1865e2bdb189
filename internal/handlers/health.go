package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheckFunc
}

func NewHealthHandler(checks map[string]HealthCheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthCheck reports "ok" with 200 when every dependency answers, and
// "degraded" with 503 otherwise.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, code := "ok", fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			status, code = "degraded", fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  version,
		"services": services,
	})
}
