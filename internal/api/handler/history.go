package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/repository"
)

// HistoryService reads persisted analyses
type HistoryService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	List(ctx context.Context, limit int) ([]domain.Analysis, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.SimilarAnalysis, error)
}

type HistoryHandler struct {
	service HistoryService
}

func NewHistoryHandler(svc HistoryService) *HistoryHandler {
	return &HistoryHandler{service: svc}
}

type listQuery struct {
	Limit int `validate:"min=0,max=100"`
}

// ListResponse response for the list endpoints
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// Get GET /v1/analyses/:id
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	analysis, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(analysis)
}

// List GET /v1/analyses?limit=N - most recent first
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit, err := parseLimit(c, repository.DefaultListLimit)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		return err
	}

	return c.JSON(ListResponse[domain.Analysis]{Items: items, Count: len(items)})
}

// Similar GET /v1/analyses/:id/similar?limit=N - nearest emotional profiles
func (h *HistoryHandler) Similar(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	limit, err := parseLimit(c, 5)
	if err != nil {
		return err
	}

	items, err := h.service.Similar(c.UserContext(), id, limit)
	if err != nil {
		return err
	}

	return c.JSON(ListResponse[domain.SimilarAnalysis]{Items: items, Count: len(items)})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(err)
	}
	return id, nil
}

func parseLimit(c *fiber.Ctx, fallback int) (int, error) {
	q := listQuery{Limit: c.QueryInt("limit", fallback)}
	if err := validateStruct(q); err != nil {
		return 0, err
	}
	if q.Limit == 0 {
		q.Limit = fallback
	}
	return q.Limit, nil
}
