package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bundle describes a model directory: bundle.yaml next to the .onnx file.
//
//	model: fer.onnx
//	input: Input3
//	output: Plus692_Output_0
//	width: 64
//	height: 64
//	grayscale: true
//	labels: [neutral, happy, surprise, sad, angry, disgust, fear, contempt]
type Bundle struct {
	Model     string   `yaml:"model"`
	Input     string   `yaml:"input"`
	Output    string   `yaml:"output"`
	Width     int      `yaml:"width"`
	Height    int      `yaml:"height"`
	Grayscale bool     `yaml:"grayscale"`
	Scale     float32  `yaml:"scale"`
	Labels    []string `yaml:"labels"`

	dir string
}

// labelAliases folds common FER label spellings onto the standard set
var labelAliases = map[string]string{
	"anger":     "angry",
	"disgusted": "disgust",
	"fearful":   "fear",
	"happiness": "happy",
	"sadness":   "sad",
	"surprised": "surprise",
	"calm":      "neutral",
}

// LoadBundle reads and validates dir/bundle.yaml
func LoadBundle(dir string) (*Bundle, error) {
	if dir == "" {
		return nil, errors.New("bundle dir is empty")
	}

	data, err := os.ReadFile(filepath.Join(dir, "bundle.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read bundle.yaml: %w", err)
	}

	b := &Bundle{
		Model: "model.onnx",
		Scale: 1.0 / 255.0,
		dir:   dir,
	}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parse bundle.yaml: %w", err)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	for i, l := range b.Labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if alias, ok := labelAliases[l]; ok {
			l = alias
		}
		b.Labels[i] = l
	}

	return b, nil
}

func (b *Bundle) validate() error {
	switch {
	case b.Input == "":
		return errors.New("bundle: input tensor name is required")
	case b.Output == "":
		return errors.New("bundle: output tensor name is required")
	case b.Width <= 0 || b.Height <= 0:
		return fmt.Errorf("bundle: invalid input size %dx%d", b.Width, b.Height)
	case len(b.Labels) == 0:
		return errors.New("bundle: labels are required")
	case b.Scale <= 0:
		return fmt.Errorf("bundle: invalid scale %v", b.Scale)
	}
	return nil
}

// Channels is 1 for grayscale models and 3 for RGB
func (b *Bundle) Channels() int {
	if b.Grayscale {
		return 1
	}
	return 3
}

// ModelPath is the absolute location of the .onnx file
func (b *Bundle) ModelPath() string {
	if filepath.IsAbs(b.Model) {
		return b.Model
	}
	return filepath.Join(b.dir, b.Model)
}
