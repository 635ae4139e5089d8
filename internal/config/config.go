package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the gateway and CLI.
type Config struct {
	// Server
	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"` // per provider call

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Rate limiting of summarize routes
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"4"`

	// Settings store
	SettingsProvider string `env:"SETTINGS_PROVIDER" envDefault:"memory"` // "memory", "redis" or "postgres"
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	DBURL            string `env:"DB_URL"`

	// Notifications to other components
	NotifyProvider string `env:"NOTIFY_PROVIDER" envDefault:"none"` // "none" or "nats"
	NATSURL        string `env:"NATS_URL"`

	// AI providers
	AIProvider    string `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GroqAPIKey    string `env:"GROQ_API_KEY"`
	GroqBaseURL   string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel     string `env:"GROQ_MODEL" envDefault:"llama-3.1-70b-versatile"`
}

// Load parses the environment over the defaults above. Malformed values are
// reported instead of being replaced by defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
