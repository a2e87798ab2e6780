package webhook

import (
	"time"
)

// Webhook is an outbound endpoint notified of analysis events
type Webhook struct {
	URL    string
	Secret string
	// Events lists the event types delivered; empty means all
	Events []string
}

// Accepts reports whether eventType is subscribed
func (w Webhook) Accepts(eventType string) bool {
	if len(w.Events) == 0 {
		return true
	}
	for _, e := range w.Events {
		if e == eventType {
			return true
		}
	}
	return false
}

// Job is one pending delivery
type Job struct {
	EventType   string
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NextRetryAt time.Time
	LastError   string
}

type EventPayload struct {
	Type      string      `json:"type"`
	Emotion   string      `json:"dominant_emotion,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
