package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     domain.EmotionScores
		want    domain.EmotionScores
		wantErr error
	}{
		{
			name: "already percentages",
			raw:  scores("happy", 75, "sad", 25),
			want: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 75},
				{Emotion: domain.EmotionSad, Score: 25},
			},
		},
		{
			name: "probabilities are scaled to percentages",
			raw: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 0.5},
				{Emotion: domain.EmotionNeutral, Score: 0.25},
				{Emotion: domain.EmotionFear, Score: 0.25},
			},
			want: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 50},
				{Emotion: domain.EmotionNeutral, Score: 25},
				{Emotion: domain.EmotionFear, Score: 25},
			},
		},
		{
			name: "rounds to one decimal",
			raw:  scores("happy", 1, "sad", 1, "fear", 1),
			want: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 33.3},
				{Emotion: domain.EmotionSad, Score: 33.3},
				{Emotion: domain.EmotionFear, Score: 33.3},
			},
		},
		{
			name: "negative raw values count as zero",
			raw: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 3},
				{Emotion: domain.EmotionSad, Score: -1},
				{Emotion: domain.EmotionFear, Score: 1},
			},
			want: domain.EmotionScores{
				{Emotion: domain.EmotionHappy, Score: 75},
				{Emotion: domain.EmotionSad, Score: 0},
				{Emotion: domain.EmotionFear, Score: 25},
			},
		},
		{
			name:    "all zero",
			raw:     scores("happy", 0, "sad", 0),
			wantErr: domain.ErrEmptyDistribution,
		},
		{
			name:    "empty",
			raw:     domain.EmotionScores{},
			wantErr: domain.ErrEmptyDistribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{12.34, 12.3},
		{12.35000001, 12.4},
		{0.04, 0},
		{99.96, 100},
		{75.25, 75.2},
		{50.25, 50.2},
		{12.25, 12.2},
		{0.15, 0.1},
		{0.25, 0.2},
		{0.35, 0.3},
		{-2.25, -2.2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round1(tt.in), "Round1(%v)", tt.in)
	}
}

func TestNormalize_RoundsExactValue(t *testing.T) {
	got, err := Normalize(domain.EmotionScores{
		{Emotion: domain.EmotionHappy, Score: 49},
		{Emotion: domain.EmotionSad, Score: 351},
	})
	require.NoError(t, err)

	assert.Equal(t, 12.2, got.Get(domain.EmotionHappy))
	assert.Equal(t, 87.8, got.Get(domain.EmotionSad))
}
