package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

var (
	labelColor    = color.New(color.Bold)
	positiveColor = color.New(color.FgGreen, color.Bold)
	negativeColor = color.New(color.FgRed, color.Bold)
	neutralColor  = color.New(color.FgYellow, color.Bold)
	errorColor    = color.New(color.FgRed)
)

func errInvalidColorMode(mode string) error {
	return fmt.Errorf("invalid --color %q (use auto, on or off)", mode)
}

// scoreColor picks green above 60, red below 40, yellow in between
func scoreColor(score float64) *color.Color {
	switch {
	case score >= 60:
		return positiveColor
	case score < 40:
		return negativeColor
	default:
		return neutralColor
	}
}

func printResult(w io.Writer, title string, emotions domain.EmotionScores, details domain.ConfidenceResult) {
	if title != "" {
		labelColor.Fprintln(w, title)
	}

	fmt.Fprintf(w, "  confidence  ")
	scoreColor(details.Score).Fprintf(w, "%.1f\n", details.Score)
	fmt.Fprintf(w, "  dominant    %s\n", details.DominantEmotion)
	fmt.Fprintf(w, "  surprise    %+.1f (%s)\n", details.SurpriseContribution, details.SurpriseReason)

	for _, es := range emotions {
		bar := strings.Repeat("#", int(es.Score/5))
		fmt.Fprintf(w, "  %-9s %5.1f %s\n", es.Emotion, es.Score, bar)
	}
}
