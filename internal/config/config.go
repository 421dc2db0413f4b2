package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "learnquest-dev-signing-key"

// Config is built once at process start and handed to every constructor.
type Config struct {
	Port string
	Env  string

	DatabaseURL string

	// Empty model names select the provider client's default.
	LLMProvider       string
	GeminiAPIKey      string
	GeminiModel       string
	AnthropicAPIKey   string
	AnthropicModel    string
	GenerationTimeout time.Duration

	JWTSecret []byte

	XPPerLevel int

	TTSAPIKey string

	CORSOrigins            []string
	SessionCleanupInterval time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function. Load uses os.LookupEnv;
// tests pass a map-backed lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Port:            get("PORT", "8080"),
		Env:             strings.ToLower(get("APP_ENV", "development")),
		DatabaseURL:     get("DATABASE_URL", ""),
		LLMProvider:     strings.ToLower(get("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:    get("GEMINI_API_KEY", ""),
		GeminiModel:     get("GEMINI_MODEL", ""),
		AnthropicAPIKey: get("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  get("ANTHROPIC_MODEL", ""),
	}
	cfg.TTSAPIKey = get("TTS_API_KEY", cfg.GeminiAPIKey)

	var err error
	if cfg.GenerationTimeout, err = parseDuration(get("GENERATION_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("GENERATION_TIMEOUT: %w", err)
	}
	if cfg.SessionCleanupInterval, err = parseDuration(get("SESSION_CLEANUP_INTERVAL", "1h")); err != nil {
		return nil, fmt.Errorf("SESSION_CLEANUP_INTERVAL: %w", err)
	}

	cfg.XPPerLevel, err = strconv.Atoi(get("XP_PER_LEVEL", "1000"))
	if err != nil || cfg.XPPerLevel <= 0 {
		return nil, fmt.Errorf("XP_PER_LEVEL must be a positive integer")
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.LLMProvider {
	case "gemini", "anthropic", "mock":
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be gemini, anthropic, or mock (got %q)", cfg.LLMProvider)
	}

	secret := get("JWT_SECRET", "")
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// UsingDevSecret reports whether tokens are signed with the built-in development key.
func (c *Config) UsingDevSecret() bool {
	return string(c.JWTSecret) == devJWTSecret
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
