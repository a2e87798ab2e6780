package scoring

import (
	"math"
	"strconv"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// Normalize converts raw classifier output to percentages rounded to one
// decimal, keeping label order. Negative raw values are treated as zero.
func Normalize(raw domain.EmotionScores) (domain.EmotionScores, error) {
	total := 0.0
	for _, es := range raw {
		if es.Score > 0 {
			total += es.Score
		}
	}

	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, domain.ErrEmptyDistribution
	}

	out := make(domain.EmotionScores, len(raw))
	for i, es := range raw {
		v := math.Max(es.Score, 0)
		out[i] = domain.EmotionScore{
			Emotion: es.Emotion,
			Score:   Round1(v / total * 100),
		}
	}

	return out, nil
}

// Round1 rounds the exact binary value of v to one decimal place,
// sending exact ties to the even digit.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
