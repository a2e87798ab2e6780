package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
)

// Name is the provider identifier reported in analyses
const Name = "onnx"

var (
	// ErrUndecodableImage is returned when the bytes are not a JPEG, PNG or GIF
	ErrUndecodableImage = errors.New("image could not be decoded")

	// ErrModelNotLoaded is returned after Close or on a zero Provider
	ErrModelNotLoaded = errors.New("onnx model not loaded")

	// ErrRuntimeNotFound means no onnxruntime shared library was found
	ErrRuntimeNotFound = errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
)

// Config selects the model bundle
type Config struct {
	BundleDir string
}

// Provider runs a local facial-expression model through onnxruntime
type Provider struct {
	bundle  *Bundle
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	// the session reuses its tensors, so one inference at a time
	mu sync.Mutex
}

var _ provider.EmotionProvider = (*Provider)(nil)

// NewProvider loads the bundle and creates the inference session
func NewProvider(cfg Config) (*Provider, error) {
	bundle, err := LoadBundle(cfg.BundleDir)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	if _, err := os.Stat(bundle.ModelPath()); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", bundle.ModelPath(), err)
	}

	libPath := resolveSharedLibraryPath(cfg.BundleDir)
	if libPath == "" {
		return nil, ErrRuntimeNotFound
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputShape := ort.NewShape(1, int64(bundle.Channels()), int64(bundle.Height), int64(bundle.Width))
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(bundle.Labels))))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		bundle.ModelPath(),
		[]string{bundle.Input},
		[]string{bundle.Output},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Provider{
		bundle:  bundle,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return Name
}

// DetectEmotions classifies the whole frame; the model expects a face crop.
// Scores are the softmax of the logits as percentages.
func (p *Provider) DetectEmotions(ctx context.Context, image []byte) (domain.EmotionScores, error) {
	if p == nil || p.bundle == nil {
		return nil, ErrModelNotLoaded
	}

	pixels, err := preprocess(image, p.bundle)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, ErrModelNotLoaded
	}

	copy(p.input.GetData(), pixels)
	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	return toScores(p.bundle.Labels, p.output.GetData()), nil
}

// Close releases the session and its tensors
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}

	errs := []error{p.session.Destroy(), p.input.Destroy(), p.output.Destroy()}
	p.session = nil
	return errors.Join(errs...)
}

// toScores keeps the model's label order so ties resolve the same way every run
func toScores(labels []string, logits []float32) domain.EmotionScores {
	if len(logits) > len(labels) {
		logits = logits[:len(labels)]
	}

	probs := softmax(logits)
	scores := make(domain.EmotionScores, len(probs))
	for i, p := range probs {
		scores[i] = domain.EmotionScore{
			Emotion: domain.Emotion(labels[i]),
			Score:   p,
		}
	}
	return scores
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names and locations are probed.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
