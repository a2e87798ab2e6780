package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/scoring"
)

type scoreOutput struct {
	ConfidenceScore float64                 `json:"confidence_score"`
	Details         domain.ConfidenceResult `json:"details"`
	Emotions        domain.EmotionScores    `json:"emotions"`
}

func newScoreCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score [file.json|-]",
		Short: "Score an emotion distribution without calling a server",
		Long: `Reads a JSON object of raw per-emotion scores, either flat
({"happy": 0.7, "sad": 0.1}) or wrapped ({"emotions": {...}}), normalizes it
to percentages and prints the contextual confidence score.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}

			raw, err := readInput(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}

			scores, err := parseDistribution(raw)
			if err != nil {
				return err
			}

			emotions, err := scoring.Normalize(scores)
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
			details := scoring.Score(emotions)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scoreOutput{
					ConfidenceScore: scoring.Round1(details.Score),
					Details:         details,
					Emotions:        emotions,
				})
			}

			printResult(cmd.OutOrStdout(), "", emotions, details)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func readInput(stdin io.Reader, src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

// parseDistribution accepts a flat object or one wrapped in "emotions"
func parseDistribution(data []byte) (domain.EmotionScores, error) {
	var wrapped struct {
		Emotions domain.EmotionScores `json:"emotions"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Emotions) > 0 {
		return wrapped.Emotions, nil
	}

	var flat domain.EmotionScores
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse distribution: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("parse distribution: no emotions found")
	}
	return flat, nil
}
