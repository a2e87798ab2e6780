package rekognition

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/metamind/internal/audit"
	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
)

// Name is the provider identifier reported in analyses
const Name = "rekognition"

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// emotionLabels maps Rekognition emotion types onto the standard labels.
// CONFUSED and UNKNOWN have no counterpart and are dropped.
var emotionLabels = map[types.EmotionName]domain.Emotion{
	types.EmotionNameAngry:     domain.EmotionAngry,
	types.EmotionNameDisgusted: domain.EmotionDisgust,
	types.EmotionNameFear:      domain.EmotionFear,
	types.EmotionNameHappy:     domain.EmotionHappy,
	types.EmotionNameSad:       domain.EmotionSad,
	types.EmotionNameSurprised: domain.EmotionSurprise,
	types.EmotionNameCalm:      domain.EmotionNeutral,
}

// Provider implements provider.EmotionProvider using AWS Rekognition
type Provider struct {
	client      *Client
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

// WithAuditLogger sets the audit logger for the provider
func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

// Ensure Provider implements provider.EmotionProvider interface at compile time
var _ provider.EmotionProvider = (*Provider)(nil)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return newProvider(client, opts...), nil
}

func newProvider(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{
		client:      client,
		auditLogger: &audit.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return Name
}

// logAudit logs an audit event
// Audit failure does not affect the operation (fire-and-forget)
func (p *Provider) logAudit(ctx context.Context, success bool, err error, metadata map[string]string) {
	event := audit.Event{
		EventType: audit.EventEmotionDetected,
		Provider:  Name,
		Success:   success,
		Metadata:  metadata,
	}

	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectEmotions returns the emotions of the most confident face.
// Scores are Rekognition's per-emotion confidences (0-100).
func (p *Provider) DetectEmotions(ctx context.Context, image []byte) (domain.EmotionScores, error) {
	meta := map[string]string{"image_size": strconv.Itoa(len(image))}

	if err := validateImage(image); err != nil {
		p.logAudit(ctx, false, err, meta)
		return nil, err
	}

	details, err := p.client.DetectFaces(ctx, image)
	if err != nil {
		p.logAudit(ctx, false, err, meta)
		return nil, err
	}
	meta["faces_count"] = strconv.Itoa(len(details))

	face := p.pickFace(details)
	if face == nil {
		p.logAudit(ctx, false, ErrNoFaceDetected, meta)
		return nil, ErrNoFaceDetected
	}

	scores := mapEmotions(face.Emotions)
	if len(scores) == 0 {
		p.logAudit(ctx, false, ErrNoFaceDetected, meta)
		return nil, fmt.Errorf("%w: face has no emotion attributes", ErrNoFaceDetected)
	}

	p.logAudit(ctx, true, nil, meta)
	return scores, nil
}

// pickFace returns the highest-confidence face above the configured floor
func (p *Provider) pickFace(details []types.FaceDetail) *types.FaceDetail {
	var best *types.FaceDetail
	var bestConfidence float32 = -1

	for i := range details {
		// a face without a reported confidence is taken as certain
		confidence := float32(100)
		if details[i].Confidence != nil {
			confidence = aws.ToFloat32(details[i].Confidence)
		}
		if confidence < p.client.config.MinFaceConfidence {
			continue
		}
		if confidence > bestConfidence {
			best = &details[i]
			bestConfidence = confidence
		}
	}

	return best
}

func mapEmotions(emotions []types.Emotion) domain.EmotionScores {
	raw := make(map[string]float64, len(emotions))
	for _, e := range emotions {
		label, ok := emotionLabels[e.Type]
		if !ok || e.Confidence == nil {
			continue
		}
		raw[string(label)] += float64(aws.ToFloat32(e.Confidence))
	}
	if len(raw) == 0 {
		return nil
	}
	return domain.EmotionScoresFromMap(raw)
}
