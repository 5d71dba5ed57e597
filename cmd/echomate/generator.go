package main

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/echomate/internal/anthropic"
	"github.com/MikeSquared-Agency/echomate/internal/config"
	"github.com/MikeSquared-Agency/echomate/internal/gemini"
	"github.com/MikeSquared-Agency/echomate/internal/openai"
	"github.com/MikeSquared-Agency/echomate/internal/persona"
)

// newGenerator returns the configured provider and the model it resolved to.
func newGenerator(ctx context.Context, cfg config.Config) (persona.Generator, string, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.Model})
		if err != nil {
			return nil, "", err
		}
		return c, c.Model(), nil
	case config.ProviderAnthropic:
		c := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.Model)
		return c, c.Model(), nil
	case config.ProviderOpenAI:
		c, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return c, c.Model(), nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
