// Package scoring folds an emotion distribution into a single contextual
// confidence score.
package scoring

import (
	"sort"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// Score computes the contextual confidence for a normalized distribution.
//
// Surprise has no fixed valence: it adds to the score when happiness
// dominates, subtracts when a negative emotion dominates, and when surprise
// itself dominates it follows whichever side is stronger.
func Score(emotions domain.EmotionScores) domain.ConfidenceResult {
	dominant := Dominant(emotions)

	happy := emotions.Get(domain.EmotionHappy)
	surprise := emotions.Get(domain.EmotionSurprise)
	neutral := emotions.Get(domain.EmotionNeutral)

	negative := 0.0
	for _, e := range domain.NegativeEmotions {
		negative += emotions.Get(e)
	}

	base := happy - negative - neutral

	contribution := 0.0
	reason := domain.SurpriseNeutralEffect

	switch {
	case dominant == domain.EmotionHappy:
		contribution = surprise
		reason = domain.SurpriseDominantHappiness
	case dominant.IsNegative():
		contribution = -surprise
		reason = domain.SurpriseDominantNegative
	case dominant == domain.EmotionSurprise:
		if happy > negative {
			contribution = surprise
			reason = domain.SurprisePositivesStronger
		} else {
			contribution = -surprise
			reason = domain.SurpriseNegativesStronger
		}
	}

	final := base + contribution

	return domain.ConfidenceResult{
		Score:                clamp((final+100)/2, 0, 100),
		DominantEmotion:      dominant,
		HappyTotal:           happy,
		NegativeTotal:        negative,
		NeutralImpact:        neutral,
		SurpriseContribution: contribution,
		SurpriseReason:       reason,
		BaseCalculation:      final,
	}
}

// Dominant returns the highest scoring label. Ties keep input order;
// an empty distribution is neutral.
func Dominant(emotions domain.EmotionScores) domain.Emotion {
	if len(emotions) == 0 {
		return domain.EmotionNeutral
	}

	sorted := make(domain.EmotionScores, len(emotions))
	copy(sorted, emotions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	return sorted[0].Emotion
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
