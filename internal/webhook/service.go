package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	HeaderSignature = "X-MetaMind-Signature"
	HeaderEvent     = "X-MetaMind-Event"
)

// Sender performs single delivery attempts
type Sender struct {
	client *http.Client
}

func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts a signed payload. Any non-2xx answer is an error.
func (s *Sender) Send(ctx context.Context, webhook Webhook, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, eventType)
	req.Header.Set("User-Agent", "MetaMind-Webhook/1.0")
	if webhook.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(webhook.Secret, payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}

	return nil
}
