package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/metamind/internal/audit"
	"github.com/saturnino-fabrica-de-software/metamind/internal/cache"
	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/imagedata"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/onnx"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/metamind/internal/repository"
	"github.com/saturnino-fabrica-de-software/metamind/internal/scoring"
	"github.com/saturnino-fabrica-de-software/metamind/internal/ws"
)

// Publisher receives completed analyses for live subscribers
type Publisher interface {
	Publish(emotion domain.Emotion, eventType ws.EventType, data interface{})
}

// RequestMeta carries caller details recorded in the audit trail
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// AnalysisResult is an analysis as returned to API callers
type AnalysisResult struct {
	domain.Analysis
	Cached bool `json:"cached"`
}

type AnalysisService struct {
	provider      provider.EmotionProvider
	repo          repository.AnalysisRepositoryInterface
	cache         *cache.ResultCache
	publishers    []Publisher
	auditLogger   audit.Logger
	logger        *slog.Logger
	maxImageBytes int
}

func NewAnalysisService(emotionProvider provider.EmotionProvider, resultCache *cache.ResultCache, logger *slog.Logger) *AnalysisService {
	if resultCache == nil {
		resultCache = cache.NewResultCache(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		provider:      emotionProvider,
		cache:         resultCache,
		auditLogger:   &audit.NoOpLogger{},
		logger:        logger,
		maxImageBytes: 10 * 1024 * 1024,
	}
}

// WithRepository enables analysis history
func (s *AnalysisService) WithRepository(repo repository.AnalysisRepositoryInterface) *AnalysisService {
	s.repo = repo
	return s
}

// WithPublisher adds a subscriber for completed analyses and scores
func (s *AnalysisService) WithPublisher(p Publisher) *AnalysisService {
	if p != nil {
		s.publishers = append(s.publishers, p)
	}
	return s
}

func (s *AnalysisService) WithAuditLogger(l audit.Logger) *AnalysisService {
	if l != nil {
		s.auditLogger = l
	}
	return s
}

func (s *AnalysisService) WithMaxImageBytes(n int) *AnalysisService {
	s.maxImageBytes = n
	return s
}

// HistoryEnabled reports whether analyses are persisted
func (s *AnalysisService) HistoryEnabled() bool {
	return s.repo != nil
}

// Analyze decodes an image payload, classifies it and scores the result.
// Repeated images are served from the result cache.
func (s *AnalysisService) Analyze(ctx context.Context, payload string, meta RequestMeta) (*AnalysisResult, error) {
	img, err := imagedata.Decode(payload, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	key := cache.Key(s.provider.Name(), img.Hash)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "analysis served from cache",
			slog.String("analysis_id", cached.ID.String()),
			slog.String("image_hash", img.Hash),
		)
		return &AnalysisResult{Analysis: cached, Cached: true}, nil
	}

	start := time.Now()
	raw, err := s.provider.DetectEmotions(ctx, img.Bytes)
	latency := time.Since(start)
	if err != nil {
		mapped := mapProviderError(err)
		s.audit(ctx, meta, audit.Event{
			EventType: audit.EventEmotionAnalyzed,
			ImageHash: img.Hash,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, mapped
	}

	emotions, err := scoring.Normalize(raw)
	if err != nil {
		return nil, err
	}

	details := scoring.Score(emotions)

	analysis := domain.Analysis{
		ID:              uuid.New(),
		Provider:        s.provider.Name(),
		ImageHash:       img.Hash,
		ConfidenceScore: scoring.Round1(details.Score),
		Details:         details,
		Emotions:        emotions,
		LatencyMs:       latency.Milliseconds(),
		CreatedAt:       time.Now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, &analysis); err != nil {
			// history is best effort, the caller still gets a result
			s.logger.ErrorContext(ctx, "failed to persist analysis",
				slog.String("analysis_id", analysis.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.cache.Set(key, analysis)

	s.publish(details.DominantEmotion, ws.EventAnalysisCompleted, analysis)

	s.audit(ctx, meta, audit.Event{
		EventType:  audit.EventEmotionAnalyzed,
		AnalysisID: analysis.ID.String(),
		ImageHash:  img.Hash,
		Success:    true,
		Metadata: map[string]string{
			"dominant_emotion": string(details.DominantEmotion),
			"confidence_score": fmt.Sprintf("%.1f", analysis.ConfidenceScore),
		},
	})

	return &AnalysisResult{Analysis: analysis}, nil
}

// Score normalizes a raw distribution and computes its confidence.
// Ties on the dominant emotion go to the label that comes first in raw.
func (s *AnalysisService) Score(ctx context.Context, raw domain.EmotionScores, meta RequestMeta) (domain.EmotionScores, domain.ConfidenceResult, error) {
	emotions, err := scoring.Normalize(raw)
	if err != nil {
		return nil, domain.ConfidenceResult{}, err
	}

	details := scoring.Score(emotions)

	s.publish(details.DominantEmotion, ws.EventScoreComputed, details)

	s.audit(ctx, meta, audit.Event{
		EventType: audit.EventScoreComputed,
		Success:   true,
		Metadata: map[string]string{
			"dominant_emotion": string(details.DominantEmotion),
		},
	})

	return emotions, details, nil
}

func (s *AnalysisService) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if s.repo == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AnalysisService) List(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if s.repo == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.repo.ListRecent(ctx, limit)
}

// Similar returns past analyses whose distribution is closest to id's
func (s *AnalysisService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.SimilarAnalysis, error) {
	if s.repo == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.repo.Similar(ctx, id, limit)
}

func (s *AnalysisService) publish(emotion domain.Emotion, eventType ws.EventType, data interface{}) {
	for _, p := range s.publishers {
		p.Publish(emotion, eventType, data)
	}
}

func (s *AnalysisService) audit(ctx context.Context, meta RequestMeta, event audit.Event) {
	event.Provider = s.provider.Name()
	event.IPAddress = meta.IPAddress
	event.UserAgent = meta.UserAgent
	if meta.RequestID != "" {
		if event.Metadata == nil {
			event.Metadata = make(map[string]string, 1)
		}
		event.Metadata["request_id"] = meta.RequestID
	}

	if err := s.auditLogger.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit log failed", slog.String("error", err.Error()))
	}
}

// mapProviderError translates provider sentinels to API errors
func mapProviderError(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var statusErr *deepface.StatusError

	switch {
	case errors.Is(err, deepface.ErrNoFaceInResponse),
		errors.Is(err, rekognition.ErrNoFaceDetected):
		return domain.ErrNoFaceDetected.WithError(err)
	case errors.Is(err, rekognition.ErrInvalidImage),
		errors.Is(err, onnx.ErrUndecodableImage):
		return domain.ErrInvalidImage.WithError(err)
	case errors.Is(err, deepface.ErrDeepFaceUnavailable),
		errors.Is(err, deepface.ErrDeepFaceTimeout),
		errors.Is(err, deepface.ErrInvalidResponse),
		errors.Is(err, rekognition.ErrThrottled),
		errors.Is(err, rekognition.ErrInvalidCredentials),
		errors.Is(err, onnx.ErrModelNotLoaded),
		errors.Is(err, context.DeadlineExceeded):
		return domain.ErrProviderUnavailable.WithError(err)
	case errors.As(err, &statusErr):
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return domain.ErrInvalidImage.WithError(err)
		}
		return domain.ErrProviderUnavailable.WithError(err)
	}

	return domain.ErrInternal.WithError(err)
}
