package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultWebhookTimeout bounds a single webhook delivery.
const DefaultWebhookTimeout = 10 * time.Second

// Webhook POSTs the event as JSON.
type Webhook struct {
	URL    string
	Client *http.Client
}

type webhookPayload struct {
	Kind string `json:"event"`
	Event
}

func (w *Webhook) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(webhookPayload{Kind: "query_execution", Event: event})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultWebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
