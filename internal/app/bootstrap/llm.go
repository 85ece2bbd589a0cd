package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/generative"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/replies"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// BuildLLMClient returns the configured completion provider, chained to the
// fallback provider when one is set. It returns nil when no provider has
// credentials, which disables generative replies.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (generative.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	primary, err := buildProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	var fallback generative.LLMClient
	if name := cfg.LLMFallbackProvider; name != "" && name != cfg.LLMProvider {
		fallback, err = buildProvider(ctx, name, cfg, awsCfg)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case primary != nil && fallback != nil:
		logger.Info("llm providers configured", "primary", cfg.LLMProvider, "fallback", cfg.LLMFallbackProvider)
		return generative.NewFallbackLLMClient(primary, fallback, logger), nil
	case primary != nil:
		logger.Info("llm provider configured", "provider", cfg.LLMProvider)
		return primary, nil
	case fallback != nil:
		logger.Warn("primary llm provider missing credentials, using fallback only", "provider", cfg.LLMFallbackProvider)
		return fallback, nil
	default:
		logger.Warn("no llm provider configured; generative replies disabled")
		return nil, nil
	}
}

// buildProvider returns nil, nil when the provider lacks credentials.
func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, awsCfg aws.Config) (generative.LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, nil
		}
		client, err := generative.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		return client, nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		client, err := generative.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		return client, nil
	case "bedrock":
		if cfg.BedrockModelID == "" {
			return nil, nil
		}
		return generative.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}

// buildReplier wraps llm with the reply rules. Requests carry no model so
// each provider completes with the model it was configured with.
func buildReplier(cfg *appconfig.Config, llm generative.LLMClient, catalog *replies.Catalog, m *metrics.BotMetrics, logger *logging.Logger) *generative.Client {
	return generative.NewClient(llm, catalog, generative.Options{
		MaxTokens:   cfg.GenerativeMaxTokens(),
		Temperature: cfg.Temperature,
		Timeout:     cfg.LLMTimeout,
	}, m, logger)
}
