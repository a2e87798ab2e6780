package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

func scores(pairs ...interface{}) domain.EmotionScores {
	out := make(domain.EmotionScores, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.EmotionScore{
			Emotion: domain.Emotion(pairs[i].(string)),
			Score:   float64(pairs[i+1].(int)),
		})
	}
	return out
}

func full(m map[string]float64) domain.EmotionScores {
	out := make(domain.EmotionScores, 0, len(domain.StandardEmotions))
	for _, e := range domain.StandardEmotions {
		out = append(out, domain.EmotionScore{Emotion: e, Score: m[string(e)]})
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name             string
		input            domain.EmotionScores
		wantScore        float64
		wantDominant     domain.Emotion
		wantNegative     float64
		wantContribution float64
		wantReason       domain.SurpriseReason
		wantBase         float64
	}{
		{
			name:             "pure happiness",
			input:            full(map[string]float64{"happy": 100}),
			wantScore:        100,
			wantDominant:     domain.EmotionHappy,
			wantNegative:     0,
			wantContribution: 0,
			wantReason:       domain.SurpriseDominantHappiness,
			wantBase:         100,
		},
		{
			name:             "pure sadness",
			input:            full(map[string]float64{"sad": 100}),
			wantScore:        0,
			wantDominant:     domain.EmotionSad,
			wantNegative:     100,
			wantContribution: 0,
			wantReason:       domain.SurpriseDominantNegative,
			wantBase:         -100,
		},
		{
			name:             "surprise with stronger positives",
			input:            full(map[string]float64{"surprise": 60, "happy": 40}),
			wantScore:        100,
			wantDominant:     domain.EmotionSurprise,
			wantNegative:     0,
			wantContribution: 60,
			wantReason:       domain.SurprisePositivesStronger,
			wantBase:         100,
		},
		{
			name:             "surprise with stronger negatives",
			input:            full(map[string]float64{"surprise": 60, "sad": 40}),
			wantScore:        0,
			wantDominant:     domain.EmotionSurprise,
			wantNegative:     40,
			wantContribution: -60,
			wantReason:       domain.SurpriseNegativesStronger,
			wantBase:         -100,
		},
		{
			name:             "surprise with balanced sides counts as negative",
			input:            full(map[string]float64{"surprise": 50, "happy": 25, "fear": 25}),
			wantScore:        25,
			wantDominant:     domain.EmotionSurprise,
			wantNegative:     25,
			wantContribution: -50,
			wantReason:       domain.SurpriseNegativesStronger,
			wantBase:         -50,
		},
		{
			name:             "happy dominant adds surprise",
			input:            full(map[string]float64{"happy": 50, "surprise": 30, "neutral": 20}),
			wantScore:        80,
			wantDominant:     domain.EmotionHappy,
			wantNegative:     0,
			wantContribution: 30,
			wantReason:       domain.SurpriseDominantHappiness,
			wantBase:         60,
		},
		{
			name:             "angry dominant subtracts surprise",
			input:            full(map[string]float64{"angry": 50, "surprise": 20, "happy": 30}),
			wantScore:        30,
			wantDominant:     domain.EmotionAngry,
			wantNegative:     50,
			wantContribution: -20,
			wantReason:       domain.SurpriseDominantNegative,
			wantBase:         -40,
		},
		{
			name:             "neutral dominant ignores surprise",
			input:            full(map[string]float64{"neutral": 70, "happy": 20, "surprise": 10}),
			wantScore:        25,
			wantDominant:     domain.EmotionNeutral,
			wantNegative:     0,
			wantContribution: 0,
			wantReason:       domain.SurpriseNeutralEffect,
			wantBase:         -50,
		},
		{
			name:             "unknown dominant label falls back to neutral effect",
			input:            scores("contempt", 70, "happy", 20, "surprise", 10),
			wantScore:        60,
			wantDominant:     domain.Emotion("contempt"),
			wantNegative:     0,
			wantContribution: 0,
			wantReason:       domain.SurpriseNeutralEffect,
			wantBase:         20,
		},
		{
			name:             "empty input is the midpoint",
			input:            domain.EmotionScores{},
			wantScore:        50,
			wantDominant:     domain.EmotionNeutral,
			wantNegative:     0,
			wantContribution: 0,
			wantReason:       domain.SurpriseNeutralEffect,
			wantBase:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.input)

			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantDominant, got.DominantEmotion)
			assert.InDelta(t, tt.wantNegative, got.NegativeTotal, 1e-9)
			assert.InDelta(t, tt.wantContribution, got.SurpriseContribution, 1e-9)
			assert.Equal(t, tt.wantReason, got.SurpriseReason)
			assert.InDelta(t, tt.wantBase, got.BaseCalculation, 1e-9)
		})
	}
}

func TestScore_Breakdown(t *testing.T) {
	got := Score(full(map[string]float64{
		"angry": 5, "disgust": 5, "fear": 10, "happy": 40, "sad": 10, "surprise": 10, "neutral": 20,
	}))

	assert.Equal(t, 40.0, got.HappyTotal)
	assert.Equal(t, 30.0, got.NegativeTotal)
	assert.Equal(t, 20.0, got.NeutralImpact)
	assert.Equal(t, domain.EmotionHappy, got.DominantEmotion)
	assert.Equal(t, 10.0, got.SurpriseContribution)
	assert.Equal(t, 0.0, got.BaseCalculation)
	assert.Equal(t, 50.0, got.Score)
}

func TestScore_NilInput(t *testing.T) {
	got := Score(nil)
	assert.Equal(t, 50.0, got.Score)
	assert.Equal(t, domain.EmotionNeutral, got.DominantEmotion)
}

func TestScore_RangeOverDistributions(t *testing.T) {
	// walk a coarse grid of distributions that sum to 100
	step := 20.0
	count := 0
	for happy := 0.0; happy <= 100; happy += step {
		for sad := 0.0; happy+sad <= 100; sad += step {
			for surprise := 0.0; happy+sad+surprise <= 100; surprise += step {
				neutral := 100 - happy - sad - surprise
				input := full(map[string]float64{
					"happy": happy, "sad": sad, "surprise": surprise, "neutral": neutral,
				})
				got := Score(input)
				count++
				assert.GreaterOrEqual(t, got.Score, 0.0)
				assert.LessOrEqual(t, got.Score, 100.0)
			}
		}
	}
	assert.Greater(t, count, 0)
}

func TestScore_Idempotent(t *testing.T) {
	input := full(map[string]float64{"happy": 33.3, "sad": 33.3, "surprise": 33.4})

	first := Score(input)
	second := Score(input)

	assert.Equal(t, first, second)
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	input := scores("sad", 10, "happy", 90)
	Score(input)

	assert.Equal(t, domain.EmotionSad, input[0].Emotion)
	assert.Equal(t, domain.EmotionHappy, input[1].Emotion)
}

func TestDominant_TieKeepsInputOrder(t *testing.T) {
	assert.Equal(t, domain.EmotionSad, Dominant(scores("sad", 50, "happy", 50)))
	assert.Equal(t, domain.EmotionHappy, Dominant(scores("happy", 50, "sad", 50)))
	assert.Equal(t, domain.EmotionSurprise, Dominant(scores("neutral", 10, "surprise", 45, "fear", 45)))
}
