package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/metrics"
)

const (
	defaultStatsWindow = 24 * time.Hour
	maxStatsWindow     = 90 * 24 * time.Hour
)

// StatsReader summarizes persisted analyses
type StatsReader interface {
	Summary(ctx context.Context, since time.Time) (*metrics.Summary, error)
}

type StatsHandler struct {
	stats StatsReader
	now   func() time.Time
}

func NewStatsHandler(stats StatsReader) *StatsHandler {
	return &StatsHandler{stats: stats, now: time.Now}
}

// Summary GET /v1/stats?window=24h
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	window := defaultStatsWindow
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return domain.ErrValidationFailed.WithError(err)
		}
		if d <= 0 || d > maxStatsWindow {
			return domain.ErrValidationFailed
		}
		window = d
	}

	summary, err := h.stats.Summary(c.UserContext(), h.now().Add(-window))
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	return c.JSON(summary)
}
