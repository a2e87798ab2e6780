package emotion_test

import (
	"context"
	"fmt"
	"log"

	"github.com/saturnino-fabrica-de-software/metamind/internal/config"
	"github.com/saturnino-fabrica-de-software/metamind/internal/emotion"
)

// ExampleNewEmotionProvider_deepface demonstrates how to create a DeepFace provider
func ExampleNewEmotionProvider_deepface() {
	cfg := &config.Config{
		ProviderType: "deepface",
		DeepFaceURL:  "http://localhost:5005",
	}

	provider, err := emotion.NewEmotionProvider(context.Background(), cfg, nil)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	fmt.Println(provider.Name())
	// Output: deepface
}

// ExampleNewEmotionProvider_mock demonstrates the deterministic dev provider
func ExampleNewEmotionProvider_mock() {
	cfg := &config.Config{ProviderType: "mock"}

	provider, err := emotion.NewEmotionProvider(context.Background(), cfg, nil)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	scores, _ := provider.DetectEmotions(context.Background(), make([]byte, 1024))
	fmt.Println(len(scores))
	// Output: 7
}
