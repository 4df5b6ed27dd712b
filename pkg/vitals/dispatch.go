package vitals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/models"
)

// Dispatcher is the notification boundary. The engine treats Send as
// at-least-once-attempted: a returned error leaves escalation state untouched
// so the next qualifying reading retries. Channel selection, templating and
// recipient lookup live behind this interface.
type Dispatcher interface {
	Send(ctx context.Context, event *models.AlertEvent) error
}

// LogDispatcher writes alert events to the service log. Used in development
// and as a fallback when no webhook is configured.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, event *models.AlertEvent) error {
	logger := common.GetLoggerWith(
		common.LoggerNameDispatcher,
		zap.String(common.LoggerFieldVitalsCategory, common.LoggerCategoryAlert),
	)
	logger.Warn("Alert dispatched (log only)", zap.Reflect("event", event))
	return nil
}

// WebhookDispatcher POSTs the alert event JSON to a notification gateway.
// It retries transient failures with a fixed backoff before reporting failure
// to the engine; the engine's own retry-on-next-reading covers the rest.
type WebhookDispatcher struct {
	URL        string
	Client     *http.Client
	MaxRetries int
	Backoff    time.Duration
}

func NewWebhookDispatcher(url string) *WebhookDispatcher {
	return &WebhookDispatcher{
		URL:        url,
		Client:     &http.Client{},
		MaxRetries: 2,
		Backoff:    500 * time.Millisecond,
	}
}

func (w *WebhookDispatcher) Send(ctx context.Context, event *models.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.Backoff):
			}
		}

		lastErr = w.post(ctx, body)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("webhook dispatch failed after %d attempts: %w", w.MaxRetries+1, lastErr)
}

func (w *WebhookDispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
