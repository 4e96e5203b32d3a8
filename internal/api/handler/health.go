package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// Version is reported by /health.
const Version = "0.1.0"

// ReadinessCheck reports whether a backing dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	ready  ReadinessCheck
	logger *slog.Logger
}

// NewHealthHandler creates the probes. A nil check means always ready,
// which is the in-memory mode.
func NewHealthHandler(ready ReadinessCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		ready:  ready,
		logger: logger,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.ready != nil {
		if err := h.ready(c.UserContext()); err != nil {
			h.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			return domain.ErrServiceUnavailable.WithMessage("Database unreachable").WithError(err)
		}
	}

	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
