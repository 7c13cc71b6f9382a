package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Customer store selection: "mock", "caspio" or "postgres".
	CustomerStore string
	UseMockData   bool
	DatabaseURL   string

	// Caspio (hosted table API) credentials and table names.
	CaspioAccountID    string
	CaspioBaseURL      string
	CaspioTokenURL     string
	CaspioClientID     string
	CaspioClientSecret string
	CaspioTimeout      time.Duration
	CaspioTableRIMS    string
	CaspioTableMemos   string
	CaspioTableLeads   string

	// Voice agent (Retell) API.
	RetellAPIKey      string
	RetellBaseURL     string
	RetellAgentID     string
	RetellPhoneNumber string

	// Live call monitoring.
	ChatWebhookURL string
	DashboardURL   string

	// Outbound SMS (payment links).
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	PaymentPageURL   string

	// Lead webhooks.
	FacebookVerifyToken string
	FacebookAccessToken string

	// Shared-secret verification for inbound voice-agent webhooks and
	// HMAC secret for the ops endpoints.
	RetellWebhookSecret string
	AdminAuthSecret     string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	accountID := getEnv("CASPIO_ACCOUNT_ID", "")
	baseURL := getEnv("CASPIO_BASE_URL", "")
	if baseURL == "" && accountID != "" {
		baseURL = "https://" + accountID + ".caspio.com"
	}
	tokenURL := getEnv("CASPIO_TOKEN_URL", "")
	if tokenURL == "" && baseURL != "" {
		tokenURL = baseURL + "/oauth/token"
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		CustomerStore: strings.ToLower(strings.TrimSpace(getEnv("CUSTOMER_STORE", "auto"))),
		UseMockData:   getEnvAsBool("USE_MOCK_DATA", false),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		CaspioAccountID:    accountID,
		CaspioBaseURL:      baseURL,
		CaspioTokenURL:     tokenURL,
		CaspioClientID:     getEnv("CASPIO_CLIENT_ID", ""),
		CaspioClientSecret: getEnv("CASPIO_CLIENT_SECRET", ""),
		CaspioTimeout:      getEnvAsDuration("CASPIO_TIMEOUT", 10*time.Second),
		CaspioTableRIMS:    getEnv("CASPIO_TABLE_RIMS", "RIMS_DATA"),
		CaspioTableMemos:   getEnv("CASPIO_TABLE_MEMOS", "RIMS_MEMOS"),
		CaspioTableLeads:   getEnv("CASPIO_TABLE_LEADS", "TravelBucks_Leads"),

		RetellAPIKey:      getEnv("RETELL_API_KEY", ""),
		RetellBaseURL:     getEnv("RETELL_BASE_URL", "https://api.retellai.com"),
		RetellAgentID:     getEnv("RETELL_AGENT_ID", ""),
		RetellPhoneNumber: getEnv("RETELL_PHONE_NUMBER", ""),

		ChatWebhookURL: getEnv("GOOGLE_CHAT_WEBHOOK_URL", ""),
		DashboardURL:   getEnv("DASHBOARD_URL", "https://app.retellai.com"),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		PaymentPageURL:   getEnv("CASPIO_PAYMENT_URL", ""),

		FacebookVerifyToken: getEnv("FB_VERIFY_TOKEN", ""),
		FacebookAccessToken: getEnv("FB_ACCESS_TOKEN", ""),

		RetellWebhookSecret: getEnv("RETELL_WEBHOOK_SECRET", ""),
		AdminAuthSecret:     getEnv("ADMIN_AUTH_SECRET", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// ResolveCustomerStore applies the "auto" selection rule: prefer Caspio when
// credentials are present, fall back to Postgres, then mock data.
func (c *Config) ResolveCustomerStore() string {
	switch c.CustomerStore {
	case "mock", "caspio", "postgres":
		return c.CustomerStore
	}
	if c.UseMockData {
		return "mock"
	}
	if c.CaspioClientID != "" && c.CaspioClientSecret != "" {
		return "caspio"
	}
	if c.DatabaseURL != "" {
		return "postgres"
	}
	return "mock"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
