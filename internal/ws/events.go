package ws

import (
	"time"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

type EventType string

const (
	EventAnalysisCompleted EventType = "analysis.completed"
	EventScoreComputed     EventType = "score.computed"
)

type Event struct {
	// Emotion is the dominant emotion, used to route to filtered subscribers
	Emotion   domain.Emotion `json:"-"`
	Type      EventType      `json:"type"`
	Data      interface{}    `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}
