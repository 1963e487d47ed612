// Package config loads runtime settings from the environment and holds the
// tuning constants shared by the hub and the HTTP layer.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is populated from environment variables (optionally seeded from a
// .env file in the working directory).
type Config struct {
	Addr           string   `envconfig:"ADDR" default:":8080"`
	DatabaseDSN    string   `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=cinesocial port=5432 sslmode=disable"`
	RedisAddr      string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string   `envconfig:"REDIS_PASSWORD"`
	RedisDB        int      `envconfig:"REDIS_DB" default:"0"`
	JWTSecret      string   `envconfig:"JWT_SECRET" required:"true"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	SecureCookies  bool     `envconfig:"SECURE_COOKIES" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	OMDbAPIKey    string `envconfig:"OMDB_API_KEY"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GroqAPIKey    string `envconfig:"GROQ_API_KEY"`
	YouTubeAPIKey string `envconfig:"YOUTUBE_API_KEY"`
	// YouTubeRPS caps outbound search calls per second.
	YouTubeRPS float64 `envconfig:"YOUTUBE_RPS" default:"2"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// GoogleClientID enables Google sign-in when set.
	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error in containers.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.YouTubeRPS <= 0 {
		return fmt.Errorf("YOUTUBE_RPS must be positive")
	}
	return nil
}
