package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/scoring"
	"github.com/saturnino-fabrica-de-software/metamind/internal/service"
)

// AnalysisService is the subset of service.AnalysisService used by the handlers
type AnalysisService interface {
	Analyze(ctx context.Context, payload string, meta service.RequestMeta) (*service.AnalysisResult, error)
	Score(ctx context.Context, raw domain.EmotionScores, meta service.RequestMeta) (domain.EmotionScores, domain.ConfidenceResult, error)
}

type AnalyzeHandler struct {
	service AnalysisService
	logger  *slog.Logger
}

func NewAnalyzeHandler(svc AnalysisService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: svc,
		logger:  logger,
	}
}

// AnalyzeRequest body for POST /analyze
type AnalyzeRequest struct {
	Image string `json:"image"`
}

// ScoreRequest body for POST /v1/score. Emotions keeps the key order of the
// request body, which decides ties on the dominant emotion.
type ScoreRequest struct {
	Emotions domain.EmotionScores `json:"emotions" validate:"required,min=1,max=32,dive"`
}

// ScoreResponse response for score endpoint
type ScoreResponse struct {
	ConfidenceScore float64                 `json:"confidence_score"`
	Details         domain.ConfidenceResult `json:"details"`
	Emotions        domain.EmotionScores    `json:"emotions"`
}

// Analyze POST /analyze and /v1/analyze - classify and score an image
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if strings.TrimSpace(req.Image) == "" {
		return domain.ErrNoImage
	}

	result, err := h.service.Analyze(c.UserContext(), req.Image, requestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// Score POST /v1/score - score a known distribution without an image
func (h *AnalyzeHandler) Score(c *fiber.Ctx) error {
	var req ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := validateStruct(req); err != nil {
		return err
	}

	emotions, details, err := h.service.Score(c.UserContext(), req.Emotions, requestMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDistribution) {
			h.logger.Debug("score request with empty distribution", slog.String("ip", c.IP()))
		}
		return err
	}

	return c.JSON(ScoreResponse{
		ConfidenceScore: scoring.Round1(details.Score),
		Details:         details,
		Emotions:        emotions,
	})
}

func requestMeta(c *fiber.Ctx) service.RequestMeta {
	meta := service.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	if id, ok := c.Locals("requestid").(string); ok {
		meta.RequestID = id
	}
	return meta
}
