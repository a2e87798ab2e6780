package mock

import (
	"context"
	"crypto/sha256"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
)

// Name is the provider identifier reported in analyses
const Name = "mock"

const minImageSize = 100

// Provider implementa provider.EmotionProvider para testes e desenvolvimento
type Provider struct{}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return Name
}

// DetectEmotions gera scores determinísticos baseados no hash da imagem
func (p *Provider) DetectEmotions(ctx context.Context, image []byte) (domain.EmotionScores, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	return generateScores(image), nil
}

// generateScores spreads the first bytes of the SHA-256 over the standard
// labels. Every score is at least 1 so the total is never zero.
func generateScores(image []byte) domain.EmotionScores {
	hash := sha256.Sum256(image)

	scores := make(domain.EmotionScores, len(domain.StandardEmotions))
	for i, e := range domain.StandardEmotions {
		scores[i] = domain.EmotionScore{
			Emotion: e,
			Score:   float64(hash[i]) + 1,
		}
	}

	return scores
}

var _ provider.EmotionProvider = (*Provider)(nil)
