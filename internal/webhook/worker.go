package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/ws"
)

const (
	defaultMaxAttempts = 5
	queueSize          = 256
)

// Worker delivers events to one webhook in the background, retrying
// failures with exponential backoff. Publish never blocks.
type Worker struct {
	webhook     Webhook
	sender      *Sender
	logger      *slog.Logger
	maxAttempts int
	tick        time.Duration

	queue   chan Job
	mu      sync.Mutex
	retries []Job
}

func NewWorker(webhook Webhook, sender *Sender, logger *slog.Logger) *Worker {
	return &Worker{
		webhook:     webhook,
		sender:      sender,
		logger:      logger.With("component", "webhook"),
		maxAttempts: defaultMaxAttempts,
		tick:        time.Second,
		queue:       make(chan Job, queueSize),
	}
}

// Publish queues an event for delivery; it is dropped when the queue is full
func (w *Worker) Publish(emotion domain.Emotion, eventType ws.EventType, data interface{}) {
	if !w.webhook.Accepts(string(eventType)) {
		return
	}

	payload, err := json.Marshal(EventPayload{
		Type:      string(eventType),
		Emotion:   string(emotion),
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		w.logger.Error("failed to marshal webhook event", "error", err)
		return
	}

	select {
	case w.queue <- Job{EventType: string(eventType), Payload: payload, MaxAttempts: w.maxAttempts}:
	default:
		w.logger.Warn("webhook queue full, event dropped", "event_type", eventType)
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.logger.Info("webhook worker started", "url", w.webhook.URL)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped")
			return
		case job := <-w.queue:
			w.processJob(ctx, job)
		case <-ticker.C:
			w.processRetries(ctx, time.Now())
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	job.Attempts++

	err := w.sender.Send(ctx, w.webhook, job.EventType, job.Payload)
	if err == nil {
		w.logger.Debug("webhook delivered", "event_type", job.EventType, "attempts", job.Attempts)
		return
	}

	job.LastError = err.Error()
	w.scheduleRetry(job)
}

func (w *Worker) scheduleRetry(job Job) {
	if job.Attempts >= job.MaxAttempts {
		w.logger.Error("webhook delivery failed",
			"event_type", job.EventType,
			"attempts", job.Attempts,
			"error", job.LastError,
		)
		return
	}

	delay := time.Duration(1<<job.Attempts) * w.tick
	job.NextRetryAt = time.Now().Add(delay)

	w.mu.Lock()
	w.retries = append(w.retries, job)
	w.mu.Unlock()

	w.logger.Info("webhook job scheduled for retry",
		"event_type", job.EventType,
		"attempts", job.Attempts,
		"next_retry", job.NextRetryAt,
	)
}

// processRetries sends every job whose backoff has elapsed
func (w *Worker) processRetries(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due []Job
	pending := w.retries[:0]
	for _, job := range w.retries {
		if !job.NextRetryAt.After(now) {
			due = append(due, job)
		} else {
			pending = append(pending, job)
		}
	}
	w.retries = pending
	w.mu.Unlock()

	for _, job := range due {
		w.processJob(ctx, job)
	}
}

func (w *Worker) pendingRetries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.retries)
}
