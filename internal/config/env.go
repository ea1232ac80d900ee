package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

// LLM providers understood by LLMProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Email backends understood by EmailProvider.
const (
	EmailResend = "resend"
	EmailGmail  = "gmail"
)

type Config struct {
	// LLM
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	ClaudeModel     string
	LLMTemperature  float64
	AgentMaxTurns   int

	// Google Calendar
	GoogleCredentialsJSON string
	GoogleCredentialsFile string
	GoogleTokenFile       string
	CalendarID            string

	// Email
	EmailProvider string
	ResendAPIKey  string
	EmailFrom     string

	// Scheduling
	Timezone  string
	DateOrder string

	// Server
	DBPath         string
	HTTPPort       int
	BaseURL        string
	RequestTimeout time.Duration
	DevMode        bool

	// Security
	EncryptionKey string
	AdminToken    string
}

func LoadFromEnv() *Config {
	emailFrom := os.Getenv("FROM_EMAIL")

	cfg := &Config{
		LLMProvider:     strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:     getEnvOrDefault("ALFRED_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		LLMTemperature:  getEnvAsFloatOrDefault("ALFRED_LLM_TEMPERATURE", 0.1),
		AgentMaxTurns:   getEnvAsIntOrDefault("ALFRED_AGENT_MAX_TURNS", 4),

		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		// Without an explicit calendar, book into the sender's own calendar.
		CalendarID: getEnvOrDefault("GOOGLE_CALENDAR_ID", getEnvOrDefault("FROM_EMAIL", "primary")),

		EmailProvider: strings.ToLower(getEnvOrDefault("EMAIL_PROVIDER", EmailResend)),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     emailFrom,

		Timezone:  getEnvOrDefault("ALFRED_TIMEZONE", "Asia/Kolkata"),
		DateOrder: strings.ToLower(getEnvOrDefault("ALFRED_DATE_ORDER", "mdy")),

		DBPath:         getEnvOrDefault("ALFRED_DB_PATH", "./alfred_booking.db"),
		HTTPPort:       getEnvAsIntOrDefault("ALFRED_HTTP_PORT", 8080),
		BaseURL:        os.Getenv("ALFRED_BASE_URL"),
		RequestTimeout: getEnvAsDurationOrDefault("ALFRED_REQUEST_TIMEOUT", 30*time.Second),
		DevMode:        getEnvAsBoolOrDefault("ALFRED_DEV_MODE", false),

		EncryptionKey: os.Getenv("ALFRED_ENCRYPTION_KEY"),
		AdminToken:    os.Getenv("ALFRED_ADMIN_TOKEN"),
	}

	return cfg
}

// LLMAPIKey returns the API key of the selected provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// LLMModel returns the model of the selected provider.
func (c *Config) LLMModel() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.ClaudeModel
	}
	return c.OpenAIModel
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
