package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const graphBaseURL = "https://graph.facebook.com/v18.0"

// FacebookLead is the lead form data fetched from the Graph API.
type FacebookLead struct {
	ID          string `json:"id"`
	CreatedTime string `json:"created_time"`
	FieldData   []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"field_data"`
}

// Field returns the first value submitted under any of the given form
// field names.
func (l *FacebookLead) Field(names ...string) string {
	for _, name := range names {
		for _, field := range l.FieldData {
			if field.Name == name && len(field.Values) > 0 {
				return field.Values[0]
			}
		}
	}
	return ""
}

// ConsentGiven reports whether any of the known consent checkbox fields
// was affirmatively checked.
func (l *FacebookLead) ConsentGiven() bool {
	value := l.Field("consent_checkbox", "consent", "i_consent_to_be_contacted")
	return strings.EqualFold(value, "true")
}

// FacebookClient fetches lead form submissions from the Graph API.
type FacebookClient struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewFacebookClient creates a Graph API client.
func NewFacebookClient(accessToken string, httpClient *http.Client) *FacebookClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &FacebookClient{accessToken: accessToken, baseURL: graphBaseURL, httpClient: httpClient}
}

// FetchLead retrieves the full field data for a leadgen id.
func (c *FacebookClient) FetchLead(ctx context.Context, leadgenID string) (*FacebookLead, error) {
	query := url.Values{}
	query.Set("access_token", c.accessToken)
	query.Set("fields", "id,created_time,field_data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+leadgenID+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("leads: build graph request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leads: graph request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leads: read graph response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leads: graph returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var lead FacebookLead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, fmt.Errorf("leads: decode graph response: %w", err)
	}
	return &lead, nil
}
