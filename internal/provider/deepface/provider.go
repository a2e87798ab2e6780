package deepface

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
)

// Name is the provider identifier reported in analyses
const Name = "deepface"

// Provider implements provider.EmotionProvider using a DeepFace REST server
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return Name
}

// DetectEmotions runs the emotion action and returns the first face's scores
func (p *Provider) DetectEmotions(ctx context.Context, image []byte) (domain.EmotionScores, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Analyze(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect emotions: %w", err)
	}

	if len(resp.Results) == 0 || len(resp.Results[0].Emotion) == 0 {
		return nil, ErrNoFaceInResponse
	}

	// DeepFace reports one entry per detected face; like the upstream
	// service we only look at the first one
	return domain.EmotionScoresFromMap(resp.Results[0].Emotion), nil
}

// Ping reports whether the DeepFace server is reachable
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

var (
	_ provider.EmotionProvider = (*Provider)(nil)
	_ provider.HealthChecker   = (*Provider)(nil)
)
