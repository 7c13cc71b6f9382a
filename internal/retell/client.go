// Package retell wraps the voice-agent REST API: fetching finished call
// records and triggering outbound agent calls.
package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"
)

const defaultBaseURL = "https://api.retellai.com"

// Config controls how the client behaves.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the voice-agent API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("retell: API key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// CallAnalysis is the post-call analysis block.
type CallAnalysis struct {
	CallSummary    string `json:"call_summary"`
	CallSentiment  string `json:"call_sentiment"`
	CallSuccessful *bool  `json:"call_successful"`
}

// Call is one voice-agent call record.
type Call struct {
	CallID                    string         `json:"call_id"`
	CallStatus                string         `json:"call_status"`
	FromNumber                string         `json:"from_number"`
	ToNumber                  string         `json:"to_number"`
	StartTimestamp            int64          `json:"start_timestamp"` // unix ms
	DurationMs                int64          `json:"duration_ms"`
	Transcript                string         `json:"transcript"`
	CallAnalysis              CallAnalysis   `json:"call_analysis"`
	CustomAnalysisData        map[string]any `json:"custom_analysis_data"`
	CollectedDynamicVariables map[string]any `json:"collected_dynamic_variables"`
	LLMDynamicVariables       map[string]any `json:"retell_llm_dynamic_variables"`
}

// StartedAt converts the millisecond start timestamp to a time.Time.
func (c *Call) StartedAt() time.Time {
	if c.StartTimestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.StartTimestamp).UTC()
}

// Variable searches the call's collected data for the first non-empty
// value under any of the given keys, checking custom analysis data,
// collected variables and agent variables in that order.
func (c *Call) Variable(keys ...string) string {
	sources := []map[string]any{c.CustomAnalysisData, c.CollectedDynamicVariables, c.LLMDynamicVariables}
	for _, source := range sources {
		for _, key := range keys {
			for k, v := range source {
				if !strings.EqualFold(k, key) {
					continue
				}
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// GetCall fetches one call by id.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, errors.New("retell: call id required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "/v2/get-call/"+callID, nil)
	if err != nil {
		return nil, err
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("retell: decode call: %w", err)
	}
	return &call, nil
}

// ListCallsRequest filters the call listing.
type ListCallsRequest struct {
	AgentID        string `json:"agent_id,omitempty"`
	StartTimestamp int64  `json:"start_timestamp,omitempty"`
	EndTimestamp   int64  `json:"end_timestamp,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	SortOrder      string `json:"sort_order,omitempty"`
}

// ListCalls fetches call summaries matching the filters.
func (c *Client) ListCalls(ctx context.Context, req ListCallsRequest) ([]Call, error) {
	if req.SortOrder == "" {
		req.SortOrder = "descending"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("retell: marshal list request: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/v2/list-calls", body)
	if err != nil {
		return nil, err
	}
	// The API has returned both a bare array and a wrapped object.
	var calls []Call
	if err := json.Unmarshal(data, &calls); err == nil {
		return calls, nil
	}
	var wrapper struct {
		Calls []Call `json:"calls"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("retell: decode call list: %w", err)
	}
	return wrapper.Calls, nil
}

// CreatePhoneCallRequest triggers an outbound agent call.
type CreatePhoneCallRequest struct {
	FromNumber       string            `json:"from_number"`
	ToNumber         string            `json:"to_number"`
	AgentID          string            `json:"agent_id,omitempty"`
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`
}

// CreatePhoneCall starts an outbound call and returns its id.
func (c *Client) CreatePhoneCall(ctx context.Context, req CreatePhoneCallRequest) (string, error) {
	if strings.TrimSpace(req.ToNumber) == "" {
		return "", errors.New("retell: to number required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("retell: marshal call request: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/create-phone-call", body)
	if err != nil {
		return "", err
	}
	var parsed struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("retell: decode call response: %w", err)
	}
	return parsed.CallID, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("retell: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retell: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("retell: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("retell API error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("retell: %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
