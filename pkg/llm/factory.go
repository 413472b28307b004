package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/config"
)

// NewOracle builds an Oracle for the configured provider.
func NewOracle(cfg *config.OracleConfig, logger *zap.Logger) (Oracle, error) {
	switch cfg.Provider {
	case "deepseek", "openai":
		return NewClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
