// Package config provides application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Extractor providers.
const (
	ExtractorRules  = "rules"
	ExtractorOpenAI = "openai"
	ExtractorGRPC   = "grpc"
	ExtractorNone   = "none"
)

// Phrasing providers.
const (
	PhrasingTemplate = "template"
	PhrasingOpenAI   = "openai"
)

// Config holds all application configuration.
type Config struct {
	Port                string   `env:"PORT" envDefault:"8080"`
	FrontendURL         string   `env:"FRONTEND_URL"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MaxRequestBodyBytes int64    `env:"MAX_REQUEST_BODY_BYTES" envDefault:"1048576"`

	DBPath         string `env:"DB_PATH" envDefault:"./data/hr-assistant.db"`
	ArchiveEnabled bool   `env:"ARCHIVE_ENABLED" envDefault:"true"`
	SeedDir        string `env:"SEED_DIR"`
	DefaultUserID  string `env:"DEFAULT_USER_ID" envDefault:"demo_user"`

	Extractor ExtractorConfig
	OpenAI    OpenAIConfig
	Chat      ChatConfig
}

// ExtractorConfig selects and tunes the slot extractor.
type ExtractorConfig struct {
	Provider string        `env:"EXTRACTOR_PROVIDER" envDefault:"rules"`
	Timeout  time.Duration `env:"EXTRACTOR_TIMEOUT" envDefault:"10s"`
	GRPCAddr string        `env:"EXTRACTOR_GRPC_ADDR"`
}

// OpenAIConfig holds chat-completions credentials.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4"`
}

// ChatConfig tunes the confirmation flow.
type ChatConfig struct {
	PhrasingProvider    string  `env:"PHRASING_PROVIDER" envDefault:"template"`
	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.7"`
	HistoryWindow       int     `env:"HISTORY_WINDOW" envDefault:"4"`
	PendingPolicy       string  `env:"PENDING_POLICY" envDefault:"replace"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Extractor.Provider = strings.ToLower(strings.TrimSpace(cfg.Extractor.Provider))
	cfg.Chat.PhrasingProvider = strings.ToLower(strings.TrimSpace(cfg.Chat.PhrasingProvider))
	cfg.Chat.PendingPolicy = strings.ToLower(strings.TrimSpace(cfg.Chat.PendingPolicy))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.ArchiveEnabled && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when ARCHIVE_ENABLED is set")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be > 0")
	}

	switch c.Extractor.Provider {
	case ExtractorRules, ExtractorNone:
	case ExtractorOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for EXTRACTOR_PROVIDER=openai")
		}
	case ExtractorGRPC:
		if c.Extractor.GRPCAddr == "" {
			return fmt.Errorf("EXTRACTOR_GRPC_ADDR is required for EXTRACTOR_PROVIDER=grpc")
		}
	default:
		return fmt.Errorf("unknown EXTRACTOR_PROVIDER %q", c.Extractor.Provider)
	}
	if c.Extractor.Timeout <= 0 {
		return fmt.Errorf("EXTRACTOR_TIMEOUT must be > 0")
	}

	switch c.Chat.PhrasingProvider {
	case PhrasingTemplate:
	case PhrasingOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for PHRASING_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown PHRASING_PROVIDER %q", c.Chat.PhrasingProvider)
	}

	if c.Chat.ConfidenceThreshold < 0 || c.Chat.ConfidenceThreshold > 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0, 1]")
	}
	if c.Chat.HistoryWindow <= 0 {
		return fmt.Errorf("HISTORY_WINDOW must be > 0")
	}
	if c.Chat.PendingPolicy != "replace" && c.Chat.PendingPolicy != "reject" {
		return fmt.Errorf("PENDING_POLICY must be replace or reject, got %q", c.Chat.PendingPolicy)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins, adding FrontendURL when set.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSAllowedOrigins)+1)
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if c.FrontendURL != "" {
		origins = append(origins, strings.TrimRight(c.FrontendURL, "/"))
	}
	return origins
}
