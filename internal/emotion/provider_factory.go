package emotion

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/metamind/internal/audit"
	"github.com/saturnino-fabrica-de-software/metamind/internal/config"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/onnx"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider/rekognition"
)

// ProviderType defines supported emotion classifier types
type ProviderType string

const (
	// ProviderTypeDeepFace is a DeepFace REST server (default)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition DetectFaces
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeONNX is a local FER model run through onnxruntime
	ProviderTypeONNX ProviderType = "onnx"
	// ProviderTypeMock returns deterministic scores, for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewEmotionProvider creates an EmotionProvider based on configuration
//
// Environment variables:
//   - PROVIDER_TYPE: "deepface", "rekognition", "onnx" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_DETECTOR, PROVIDER_TIMEOUT: DeepFace client settings
//   - AWS_REGION: AWS region for Rekognition, credentials via the SDK chain
//   - ONNX_BUNDLE_DIR: directory holding bundle.yaml and the model
func NewEmotionProvider(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.EmotionProvider, error) {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}

	switch ProviderType(cfg.ProviderType) {
	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil

	case ProviderTypeRekognition:
		prov, err := rekognition.NewProvider(ctx, rekognition.Config{
			Region:            cfg.AWSRegion,
			MaxAttempts:       rekognition.DefaultConfig().MaxAttempts,
			MinFaceConfidence: rekognition.DefaultConfig().MinFaceConfidence,
		}, rekognition.WithAuditLogger(auditLogger))
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return prov, nil

	case ProviderTypeONNX:
		prov, err := onnx.NewProvider(onnx.Config{BundleDir: cfg.ONNXBundleDir})
		if err != nil {
			return nil, fmt.Errorf("create onnx provider: %w", err)
		}
		return prov, nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s, %s)",
			cfg.ProviderType, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeONNX, ProviderTypeMock)
	}
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) provider.EmotionProvider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}
	if cfg.ProviderTimeout > 0 {
		deepfaceConfig.Timeout = cfg.ProviderTimeout
	}

	return deepface.NewProvider(deepfaceConfig)
}
