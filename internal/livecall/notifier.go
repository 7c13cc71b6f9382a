package livecall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Notifier delivers messages to the team chat space. An empty threadKey
// posts to the space root; otherwise replies land in that thread.
type Notifier interface {
	Send(ctx context.Context, threadKey string, msg *Message) error
}

// ErrNotifierUnconfigured is returned when no webhook URL is set.
var ErrNotifierUnconfigured = errors.New("chat webhook URL not configured")

// WebhookNotifier posts messages to an incoming-webhook URL.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(webhookURL string, httpClient *http.Client, logger *logging.Logger) *WebhookNotifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookNotifier{webhookURL: webhookURL, httpClient: httpClient, logger: logger}
}

// Send posts the message, threading it when a key is given.
func (n *WebhookNotifier) Send(ctx context.Context, threadKey string, msg *Message) error {
	if strings.TrimSpace(n.webhookURL) == "" {
		return ErrNotifierUnconfigured
	}

	target, err := n.targetURL(threadKey)
	if err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("livecall: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("livecall: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("livecall: chat webhook error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.logger.Warn("chat webhook rejected message", "status", resp.StatusCode, "body", string(data))
		return fmt.Errorf("livecall: chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// targetURL appends the threadKey query parameter, preserving whatever
// token parameters the webhook URL already carries.
func (n *WebhookNotifier) targetURL(threadKey string) (string, error) {
	if threadKey == "" {
		return n.webhookURL, nil
	}
	parsed, err := url.Parse(n.webhookURL)
	if err != nil {
		return "", fmt.Errorf("livecall: invalid webhook URL: %w", err)
	}
	q := parsed.Query()
	q.Set("threadKey", threadKey)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

var _ Notifier = (*WebhookNotifier)(nil)
