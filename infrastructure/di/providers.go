package di

import (
	"go.uber.org/zap"

	"mindgraph-backend/application/ports"
	"mindgraph-backend/application/session"
	domainconfig "mindgraph-backend/domain/config"
	"mindgraph-backend/infrastructure/config"
	"mindgraph-backend/infrastructure/oracle"
	"mindgraph-backend/interfaces/websocket"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Oracle       ports.DeltaOracle
	Sessions     *session.Manager
	Hub          *websocket.Hub
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig creates the domain configuration
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideOracle creates the delta oracle. Without an API key the scripted
// oracle serves empty deltas, which keeps the delta and refinement
// endpoints fully usable.
func ProvideOracle(cfg *config.Config, logger *zap.Logger) ports.DeltaOracle {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, utterance extraction disabled")
		return oracle.NewScriptedOracle()
	}
	return oracle.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
}

// ProvideSessionManager creates the session registry
func ProvideSessionManager(
	domainCfg *domainconfig.DomainConfig,
	deltaOracle ports.DeltaOracle,
	cfg *config.Config,
	logger *zap.Logger,
) *session.Manager {
	return session.NewManager(domainCfg, deltaOracle, cfg.LayoutAllocator, logger)
}

// ProvideHub creates the WebSocket hub
func ProvideHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(logger)
}
