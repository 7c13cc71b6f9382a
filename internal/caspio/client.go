package caspio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"log/slog"
)

const defaultTimeout = 10 * time.Second

// tokenSafetyMargin refreshes the OAuth token ahead of its actual expiry.
const tokenSafetyMargin = 5 * time.Minute

// Config controls how the Caspio client behaves.
type Config struct {
	AccountID    string
	BaseURL      string // e.g. https://c3afw288.caspio.com
	TokenURL     string // defaults to BaseURL + /oauth/token
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client wraps the Caspio REST v2 table endpoints.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("caspio: client credentials are required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		if strings.TrimSpace(cfg.AccountID) == "" {
			return nil, errors.New("caspio: base URL or account ID is required")
		}
		baseURL = "https://" + cfg.AccountID + ".caspio.com"
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/token"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// QueryRecords fetches rows from a table, optionally filtered by a
// SQL-like where clause.
func (c *Client) QueryRecords(ctx context.Context, table, where string) ([]map[string]any, error) {
	q := url.Values{}
	if where != "" {
		q.Set("q.where", where)
	}
	data, err := c.invoke(ctx, http.MethodGet, c.tablePath(table), q, nil)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Result []map[string]any `json:"Result"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("caspio: decode query response: %w", err)
	}
	return wrapper.Result, nil
}

// InsertRecord adds one row to a table.
func (c *Client) InsertRecord(ctx context.Context, table string, record any) (map[string]any, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("caspio: marshal record: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, c.tablePath(table), nil, body)
	if err != nil {
		return nil, err
	}
	result := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			// Caspio sometimes returns an empty body on insert.
			return map[string]any{}, nil
		}
	}
	return result, nil
}

// UpdateRecords updates all rows matching the where clause.
func (c *Client) UpdateRecords(ctx context.Context, table, where string, updates any) error {
	body, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("caspio: marshal updates: %w", err)
	}
	q := url.Values{}
	q.Set("q.where", where)
	_, err = c.invoke(ctx, http.MethodPut, c.tablePath(table), q, body)
	return err
}

// Ping verifies credentials by requesting an access token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

func (c *Client) tablePath(table string) string {
	return "/rest/v2/tables/" + url.PathEscape(table) + "/records"
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("caspio: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caspio: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("caspio: read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked server-side; drop the cache so the
		// next call re-authenticates.
		c.mu.Lock()
		c.cachedToken = ""
		c.mu.Unlock()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cachedToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.cachedToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, form)
	if err != nil {
		return "", fmt.Errorf("caspio: build token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caspio: token request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("caspio: read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp.StatusCode, data)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("caspio: decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", errors.New("caspio: token response missing access_token")
	}

	c.cachedToken = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenSafetyMargin)
	c.logger.Debug("caspio OAuth token obtained", "expires_in", parsed.ExpiresIn)
	return c.cachedToken, nil
}

// APIError is a non-2xx answer from the Caspio REST API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"Code,omitempty"`
	Message    string `json:"Message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("caspio: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("caspio: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed APIError
	if err := json.Unmarshal(body, &parsed); err != nil || (parsed.Code == "" && parsed.Message == "") {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	parsed.StatusCode = status
	return &parsed
}
