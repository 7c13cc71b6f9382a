// Package notify delivers outbound SMS messages.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// SMSSender sends a text message and returns the provider message id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// TwilioSender posts SMS messages using Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioSender builds a sender with sane defaults.
func NewTwilioSender(accountSID, authToken, from string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    "https://api.twilio.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL points the sender at a different API host, used in tests.
func (s *TwilioSender) WithBaseURL(baseURL string) *TwilioSender {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// SendSMS dispatches a single SMS.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if s.accountSID == "" || s.authToken == "" {
		return "", errors.New("notify: twilio credentials missing")
	}
	if to == "" {
		return "", errors.New("notify: to required")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("notify: body required")
	}

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", fmt.Errorf("notify: build request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify: twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("twilio send rejected", "status", resp.StatusCode, "to", to)
		return "", fmt.Errorf("notify: twilio returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("notify: decode twilio response: %w", err)
	}

	s.logger.Info("sms sent", "to", to, "sid", parsed.SID, "status", parsed.Status)
	return parsed.SID, nil
}

var _ SMSSender = (*TwilioSender)(nil)

// StubSMSSender records messages instead of sending them, used in mock
// mode and tests.
type StubSMSSender struct {
	mu       sync.Mutex
	Messages []StubMessage
}

// StubMessage is one recorded send.
type StubMessage struct {
	To   string
	Body string
}

// SendSMS records the message and returns a synthetic sid.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, StubMessage{To: to, Body: body})
	return fmt.Sprintf("SM_stub_%d", len(s.Messages)), nil
}

var _ SMSSender = (*StubSMSSender)(nil)
