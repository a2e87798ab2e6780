package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventEmotionDetected EventType = "EMOTION_DETECTED"
	EventEmotionAnalyzed EventType = "EMOTION_ANALYZED"
	EventScoreComputed   EventType = "SCORE_COMPUTED"
)

// Event represents an audit event. Image bytes are never recorded, only their hash.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	EventType  EventType         `json:"event_type"`
	AnalysisID string            `json:"analysis_id,omitempty"`
	ImageHash  string            `json:"image_hash,omitempty"`
	Provider   string            `json:"provider"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Client     *ClientInfo       `json:"client,omitempty"`
}

// ClientInfo is the parsed form of a User-Agent header
type ClientInfo struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Device  string `json:"device,omitempty"`
	Bot     bool   `json:"bot,omitempty"`
}

// ParseClient extracts browser, OS and device class from a User-Agent.
// Returns nil for an empty header.
func ParseClient(userAgent string) *ClientInfo {
	if userAgent == "" {
		return nil
	}

	ua := useragent.Parse(userAgent)

	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Tablet:
		device = "tablet"
	case ua.Mobile:
		device = "mobile"
	case !ua.Desktop:
		device = "unknown"
	}

	return &ClientInfo{
		Browser: ua.Name,
		OS:      ua.OS,
		Device:  device,
		Bot:     ua.Bot,
	}
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Client == nil {
		event.Client = ParseClient(event.UserAgent)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("provider", event.Provider),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
