package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// EmotionProvider classifies the facial emotion in an image
type EmotionProvider interface {
	// Name identifies the provider in responses and audit records
	Name() string

	// DetectEmotions returns raw, non-negative scores per emotion label for
	// the most prominent face in the image. Scores need not be normalized.
	DetectEmotions(ctx context.Context, image []byte) (domain.EmotionScores, error)
}

// HealthChecker is implemented by providers backed by a remote service.
// /ready reports not_ready while Ping fails.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
