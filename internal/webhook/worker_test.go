package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
	"github.com/saturnino-fabrica-de-software/metamind/internal/ws"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebhook_Accepts(t *testing.T) {
	all := Webhook{}
	assert.True(t, all.Accepts("analysis.completed"))

	only := Webhook{Events: []string{"analysis.completed"}}
	assert.True(t, only.Accepts("analysis.completed"))
	assert.False(t, only.Accepts("score.computed"))
}

func TestSender_Send(t *testing.T) {
	var gotSig, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotEvent = r.Header.Get(HeaderEvent)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	payload := []byte(`{"type":"analysis.completed"}`)
	err := NewSender(time.Second).Send(context.Background(), Webhook{URL: srv.URL, Secret: "s3cret"}, "analysis.completed", payload)
	require.NoError(t, err)

	assert.Equal(t, "analysis.completed", gotEvent)
	assert.Equal(t, payload, gotBody)
	assert.True(t, Verify("s3cret", gotBody, gotSig))
}

func TestSender_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewSender(time.Second).Send(context.Background(), Webhook{URL: srv.URL}, "x", []byte(`{}`))
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestWorker_DeliversPublishedEvents(t *testing.T) {
	received := make(chan EventPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event EventPayload
		_ = json.NewDecoder(r.Body).Decode(&event)
		received <- event
	}))
	defer srv.Close()

	worker := NewWorker(Webhook{URL: srv.URL, Events: []string{string(ws.EventAnalysisCompleted)}}, NewSender(time.Second), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// filtered out
	worker.Publish(domain.EmotionSad, ws.EventScoreComputed, map[string]int{"n": 1})
	worker.Publish(domain.EmotionHappy, ws.EventAnalysisCompleted, map[string]int{"n": 2})

	select {
	case event := <-received:
		assert.Equal(t, string(ws.EventAnalysisCompleted), event.Type)
		assert.Equal(t, "happy", event.Emotion)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestWorker_RetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	worker := NewWorker(Webhook{URL: srv.URL}, NewSender(time.Second), testLogger())
	worker.tick = 10 * time.Millisecond
	ctx := context.Background()

	worker.processJob(ctx, Job{EventType: "analysis.completed", Payload: []byte(`{}`), MaxAttempts: 3})
	assert.Equal(t, 1, worker.pendingRetries())

	// not due yet
	worker.processRetries(ctx, time.Now())
	assert.Equal(t, int32(1), calls.Load())

	worker.processRetries(ctx, time.Now().Add(time.Second))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, worker.pendingRetries())
}

func TestWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	worker := NewWorker(Webhook{URL: srv.URL}, NewSender(time.Second), testLogger())
	ctx := context.Background()

	worker.processJob(ctx, Job{EventType: "x", Payload: []byte(`{}`), MaxAttempts: 2})
	worker.processRetries(ctx, time.Now().Add(time.Hour))

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, worker.pendingRetries())
}
