package cli

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/config"
	"github.com/joelkehle/claimestimate/internal/oracle"
)

// NewOracleClient builds the configured provider client wrapped with the
// retry and per-attempt timeout policy.
func NewOracleClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (oracle.Client, error) {
	var base oracle.Client
	switch strings.ToLower(cfg.Oracle.Provider) {
	case oracle.ProviderGemini:
		c, err := oracle.NewGeminiClient(ctx, cfg.APIKey(), cfg.Oracle.Model)
		if err != nil {
			return nil, err
		}
		log.Debug("oracle client", zap.String("provider", oracle.ProviderGemini), zap.String("model", c.ModelName()))
		base = c
	default:
		c := oracle.NewAnthropicClient(cfg.APIKey(), cfg.Oracle.Model)
		log.Debug("oracle client", zap.String("provider", oracle.ProviderAnthropic), zap.String("model", c.ModelName()))
		base = c
	}
	return oracle.NewRetrying(base, cfg.Oracle.MaxAttempts, cfg.OracleTimeout(), log), nil
}
