package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/incidentlab/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with breaker, retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → breaker → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry, logger)
	guarded := WithCircuitBreaker(retried, cfg.Breaker, logger)

	logger.Info("classifier provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", base.ModelID()))

	return guarded, nil
}

// NewProviderFromEnv reads configuration from the environment and builds a
// Provider along with the Config it was built from. The boolean is false
// when no provider is configured, in which case the caller should run with
// keyword evaluation only.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, logger *zap.Logger) (Provider, Config, bool, error) {
	cfg, ok, err := LoadConfig()
	if err != nil || !ok {
		return nil, Config{}, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, Config{}, false, err
	}
	p, err := NewProvider(ctx, cfg, eventRepo, logger)
	if err != nil {
		return nil, Config{}, false, err
	}
	return p, cfg, true, nil
}
