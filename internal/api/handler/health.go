package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/database"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

type HealthHandler struct {
	db            database.Pinger
	provider      string
	providerCheck provider.HealthChecker
}

// NewHealthHandler creates a health handler. db may be nil when history is disabled.
func NewHealthHandler(db database.Pinger, providerName string) *HealthHandler {
	return &HealthHandler{db: db, provider: providerName}
}

// WithProviderCheck makes /ready depend on the classifier being reachable
func (h *HealthHandler) WithProviderCheck(check provider.HealthChecker) *HealthHandler {
	h.providerCheck = check
	return h
}

type HomeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Provider string `json:"provider,omitempty"`
	Database string `json:"database,omitempty"`
	// ProviderStatus is set by /ready when the provider can be probed
	ProviderStatus string `json:"provider_status,omitempty"`
}

// Home GET /
func (h *HealthHandler) Home(c *fiber.Ctx) error {
	return c.JSON(HomeResponse{
		Message: "MetaMind Emotion API",
		Status:  "running",
	})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:   "ok",
		Version:  Version,
		Provider: h.provider,
	})
}

// Ready reports 503 when the configured database or a remote provider
// cannot be reached
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ready"}
	ready := true

	if h.db != nil {
		resp.Database = "ok"
		if err := database.HealthCheck(c.UserContext(), h.db); err != nil {
			resp.Database = "unreachable"
			ready = false
		}
	}

	if h.providerCheck != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		resp.ProviderStatus = "ok"
		if err := h.providerCheck.Ping(ctx); err != nil {
			resp.ProviderStatus = "unreachable"
			ready = false
		}
	}

	if !ready {
		resp.Status = "not_ready"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.JSON(resp)
}
