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
	StaticDir     string
	DatabaseURL   string
	ExportPath    string
	SessionMaxAge time.Duration
	SweepInterval time.Duration

	// Completion providers
	GroqAPIKey       string
	GroqBaseURL      string
	GeminiAPIKey     string
	ChatModel        string
	ExtractionModel  string
	Temperature      float64
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	// Confirmation detection
	StrictConfirmation bool

	// Email delivery
	EmailProvider     string
	GmailAddress      string
	GmailAppPassword  string
	SMTPHost          string
	SMTPPort          int
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StaticDir:     getEnv("STATIC_DIR", "web/static"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ExportPath:    getEnv("EXPORT_PATH", "appointments_data/appointments.xlsx"),
		SessionMaxAge: getEnvAsDuration("SESSION_MAX_AGE", time.Hour),
		SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		ChatModel:        getEnv("CHAT_MODEL", "llama-3.3-70b-versatile"),
		ExtractionModel:  getEnv("EXTRACTION_MODEL", "llama-3.3-70b-versatile"),
		Temperature:      getEnvAsFloat("CHAT_TEMPERATURE", 0),
		RetryMaxAttempts: getEnvAsInt("LLM_RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   getEnvAsDuration("LLM_RETRY_BASE_DELAY", 2*time.Second),
		RetryMaxDelay:    getEnvAsDuration("LLM_RETRY_MAX_DELAY", 10*time.Second),

		StrictConfirmation: getEnvAsBool("STRICT_CONFIRMATION", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "smtp"))),
		GmailAddress:      getEnv("GMAIL_ADDRESS", ""),
		GmailAppPassword:  getEnv("GMAIL_APP_PASSWORD", ""),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Hospital Front Desk"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
