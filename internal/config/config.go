package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/mindstash/mindstash/internal/model"
)

// Config holds the configuration for the capture service and gateway.
// Environment variables are parsed from the MINDSTASH_ prefix.
type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"mindstash.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// AI gateway consumed by the classification/extraction services
	AIEndpoint       string `envconfig:"AI_ENDPOINT" default:"http://localhost:8787/categorize"`
	AITimeoutSeconds int    `envconfig:"AI_TIMEOUT_SECONDS" default:"10"`
	OfflineOnly      bool   `envconfig:"OFFLINE_ONLY" default:"false"`

	// Inbox worker cadence
	ProcessIntervalSeconds int `envconfig:"PROCESS_INTERVAL_SECONDS" default:"15"`

	// Grouping policy constants (tunable, see grouping service)
	GroupWindowMinutes int     `envconfig:"GROUP_WINDOW_MINUTES" default:"5"`
	GroupSimilarity    float64 `envconfig:"GROUP_SIMILARITY" default:"0.30"`

	// Offline extraction segment cap
	MaxSegments int `envconfig:"MAX_SEGMENTS" default:"5"`

	// User profile embedded in online prompts
	UserName              string   `envconfig:"USER_NAME" default:""`
	UserProfession        string   `envconfig:"USER_PROFESSION" default:""`
	UserCompany           string   `envconfig:"USER_COMPANY" default:""`
	UserProjects          []string `envconfig:"USER_PROJECTS" default:""`
	UserAdditionalContext string   `envconfig:"USER_ADDITIONAL_CONTEXT" default:""`

	// Gateway (server-side AI collaborator)
	GatewayPort     int    `envconfig:"GATEWAY_PORT" default:"8787"`
	LLMBaseURL      string `envconfig:"LLM_BASE_URL" default:"https://api.anthropic.com"`
	LLMAPIKey       string `envconfig:"LLM_API_KEY" default:""`
	LLMModel        string `envconfig:"LLM_MODEL" default:"claude-sonnet-4-5"`
	LLMMaxTokens    int    `envconfig:"LLM_MAX_TOKENS" default:"2048"`
	LLMTimeoutSecs  int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"60"`
}

// ResolveDefaults validates the storage driver selection.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("MINDSTASH_SQLITE_PATH must not be empty with sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("MINDSTASH_POSTGRES_DSN is required with postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.GroupSimilarity <= 0 || c.GroupSimilarity >= 1 {
		return fmt.Errorf("GROUP_SIMILARITY must be in (0,1), got %v", c.GroupSimilarity)
	}
	if c.MaxSegments < 1 {
		return fmt.Errorf("MAX_SEGMENTS must be >= 1, got %d", c.MaxSegments)
	}
	return nil
}

// New creates a Config by parsing MINDSTASH_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MINDSTASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("ai_endpoint", cfg.AIEndpoint).
		Bool("offline_only", cfg.OfflineOnly).
		Int("group_window_minutes", cfg.GroupWindowMinutes).
		Float64("group_similarity", cfg.GroupSimilarity).
		Msg("Configuration loaded")

	return &cfg, nil
}

// AITimeout returns the configured AI call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// GroupWindow returns the grouping time window as a duration.
func (c *Config) GroupWindow() time.Duration {
	return time.Duration(c.GroupWindowMinutes) * time.Minute
}

// ProcessInterval returns the inbox worker polling interval.
func (c *Config) ProcessInterval() time.Duration {
	return time.Duration(c.ProcessIntervalSeconds) * time.Second
}

// UserContext assembles the prompt profile from config.
func (c *Config) UserContext() model.UserContext {
	return model.UserContext{
		Name:              c.UserName,
		Profession:        c.UserProfession,
		Company:           c.UserCompany,
		Projects:          c.UserProjects,
		AdditionalContext: c.UserAdditionalContext,
	}
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
