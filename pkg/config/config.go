package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for moedb-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8787"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Oracle (LLM) configuration
	Oracle OracleConfig `yaml:"oracle"`

	// Harvester (web content fetch) configuration
	Harvest HarvestConfig `yaml:"harvest"`

	// Ingestion pipeline knobs
	Ingest IngestConfig `yaml:"ingest"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"moedb"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"moedb_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// URL builds a connection string for pgx.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// OracleConfig holds text-generation oracle configuration. The default
// provider is an OpenAI-compatible endpoint (DeepSeek); Anthropic is
// supported as an alternative.
type OracleConfig struct {
	Provider        string `yaml:"provider" env:"ORACLE_PROVIDER" env-default:"deepseek"`
	Endpoint        string `yaml:"endpoint" env:"ORACLE_ENDPOINT" env-default:"https://api.deepseek.com/v1"`
	Model           string `yaml:"model" env:"ORACLE_MODEL" env-default:"deepseek-chat"`
	APIKey          string `yaml:"-" env:"ORACLE_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// HarvestConfig holds Firecrawl scrape API configuration.
type HarvestConfig struct {
	Endpoint       string `yaml:"endpoint" env:"FIRECRAWL_ENDPOINT" env-default:"https://api.firecrawl.dev/v1"`
	APIKey         string `yaml:"-" env:"FIRECRAWL_API_KEY"` // Secret - not in YAML
	SourcesFile    string `yaml:"sources_file" env:"HARVEST_SOURCES_FILE" env-default:"sources.yaml"`
	WaitForMillis  int    `yaml:"wait_for_millis" env:"HARVEST_WAIT_FOR_MILLIS" env-default:"2000"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"HARVEST_TIMEOUT_SECONDS" env-default:"30"`
}

// IngestConfig holds pipeline-level policy knobs.
type IngestConfig struct {
	// DuplicateConfidenceThreshold is the single documented threshold above
	// which a disambiguation verdict stops the submission as a duplicate.
	// The comparison is strict: confidence must exceed the threshold.
	DuplicateConfidenceThreshold float64 `yaml:"duplicate_confidence_threshold" env:"INGEST_DUPLICATE_CONFIDENCE_THRESHOLD" env-default:"0.7"`

	// HarvestCharBudget caps the combined harvest content handed to the
	// extraction oracle. The prefix is kept; trailing detail is dropped.
	HarvestCharBudget int `yaml:"harvest_char_budget" env:"INGEST_HARVEST_CHAR_BUDGET" env-default:"8000"`

	// ClaimTTLMinutes is how long an ingest claim on a normalized work name
	// survives if never released (e.g. the process crashed mid-ingestion).
	ClaimTTLMinutes int `yaml:"claim_ttl_minutes" env:"INGEST_CLAIM_TTL_MINUTES" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If config.yaml does not exist, configuration comes from the
// environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required secrets are present. Missing secrets are a
// fatal configuration error raised before any network call is attempted.
func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case "deepseek", "openai":
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("ORACLE_API_KEY not configured")
		}
	case "anthropic":
		if c.Oracle.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY not configured")
		}
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}

	if c.Harvest.APIKey == "" {
		return fmt.Errorf("FIRECRAWL_API_KEY not configured")
	}

	if c.Ingest.DuplicateConfidenceThreshold < 0 || c.Ingest.DuplicateConfidenceThreshold > 1 {
		return fmt.Errorf("duplicate confidence threshold must be in [0,1], got %g",
			c.Ingest.DuplicateConfidenceThreshold)
	}
	return nil
}
