package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Emotion is a label produced by an emotion classifier
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionNeutral  Emotion = "neutral"
)

// StandardEmotions lists the seven labels in canonical order
var StandardEmotions = []Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// NegativeEmotions are the labels that pull the confidence down
var NegativeEmotions = []Emotion{
	EmotionSad,
	EmotionFear,
	EmotionAngry,
	EmotionDisgust,
}

// IsNegative reports whether e belongs to the negative set
func (e Emotion) IsNegative() bool {
	for _, n := range NegativeEmotions {
		if e == n {
			return true
		}
	}
	return false
}

// IsStandard reports whether e is one of the seven standard labels
func (e Emotion) IsStandard() bool {
	for _, s := range StandardEmotions {
		if e == s {
			return true
		}
	}
	return false
}

// EmotionScore is a single label/score pair
type EmotionScore struct {
	Emotion Emotion `json:"emotion"`
	Score   float64 `json:"score"`
}

// EmotionScores representa uma distribuição ordenada de emoções.
// Order matters: ties on the dominant emotion are broken by position.
type EmotionScores []EmotionScore

// EmotionScoresFromMap builds scores from a map. Standard labels come first
// in canonical order, any other labels follow sorted by name.
func EmotionScoresFromMap(m map[string]float64) EmotionScores {
	scores := make(EmotionScores, 0, len(m))
	seen := make(map[string]bool, len(m))

	for _, e := range StandardEmotions {
		if v, ok := m[string(e)]; ok {
			scores = append(scores, EmotionScore{Emotion: e, Score: v})
			seen[string(e)] = true
		}
	}

	extra := make([]string, 0)
	for k := range m {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		scores = append(scores, EmotionScore{Emotion: Emotion(k), Score: m[k]})
	}

	return scores
}

// Get returns the score for e, or 0 if absent
func (s EmotionScores) Get(e Emotion) float64 {
	for _, es := range s {
		if es.Emotion == e {
			return es.Score
		}
	}
	return 0
}

// Total sums every score in the distribution
func (s EmotionScores) Total() float64 {
	total := 0.0
	for _, es := range s {
		total += es.Score
	}
	return total
}

// Vector returns the standard labels in canonical order, missing ones as 0
func (s EmotionScores) Vector() []float32 {
	vec := make([]float32, len(StandardEmotions))
	for i, e := range StandardEmotions {
		vec[i] = float32(s.Get(e))
	}
	return vec
}

// MarshalJSON encodes the scores as an object, keeping their order
func (s EmotionScores) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, es := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(string(es.Emotion))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(es.Score)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// UnmarshalJSON decodes an object of label/score pairs in key order.
// A repeated key keeps its first position and its last value.
func (s *EmotionScores) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return fmt.Errorf("emotion scores: expected object, got %v", tok)
	}

	scores := make(EmotionScores, 0, len(StandardEmotions))
	index := make(map[Emotion]int, len(StandardEmotions))

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label := Emotion(tok.(string))

		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("emotion scores: %s: %w", label, err)
		}

		if i, ok := index[label]; ok {
			scores[i].Score = score
			continue
		}
		index[label] = len(scores)
		scores = append(scores, EmotionScore{Emotion: label, Score: score})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = scores
	return nil
}

// SurpriseReason explains how surprise was folded into the score
type SurpriseReason string

const (
	SurpriseDominantHappiness SurpriseReason = "positive (dominant happiness)"
	SurpriseDominantNegative  SurpriseReason = "negative (dominant negative emotion)"
	SurprisePositivesStronger SurpriseReason = "positive (positives stronger)"
	SurpriseNegativesStronger SurpriseReason = "negative (negatives stronger)"
	SurpriseNeutralEffect     SurpriseReason = "neutral effect"
)

// ConfidenceResult is the breakdown of a contextual confidence calculation
type ConfidenceResult struct {
	Score                float64        `json:"score"`
	DominantEmotion      Emotion        `json:"dominant_emotion"`
	HappyTotal           float64        `json:"happy_total"`
	NegativeTotal        float64        `json:"negative_total"`
	NeutralImpact        float64        `json:"neutral_impact"`
	SurpriseContribution float64        `json:"surprise_contribution"`
	SurpriseReason       SurpriseReason `json:"surprise_reason"`
	BaseCalculation      float64        `json:"base_calculation"`
}

// Analysis representa uma análise de emoção concluída
type Analysis struct {
	ID              uuid.UUID        `json:"id"`
	Provider        string           `json:"provider"`
	ImageHash       string           `json:"image_hash"`
	ConfidenceScore float64          `json:"confidence_score"`
	Details         ConfidenceResult `json:"details"`
	Emotions        EmotionScores    `json:"emotions"`
	LatencyMs       int64            `json:"latency_ms"`
	CreatedAt       time.Time        `json:"created_at"`
}

// SimilarAnalysis is an analysis ranked by distance to a reference distribution
type SimilarAnalysis struct {
	Analysis Analysis `json:"analysis"`
	Distance float64  `json:"distance"`
}
