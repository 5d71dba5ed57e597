package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type Config struct {
	Port            int
	LogLevel        string
	Provider        string
	Model           string // empty means the provider's default
	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	NatsURL         string // empty disables event publishing
	NatsToken       string
	APIToken        string
	MaxUploadMB     int
}

func Load() Config {
	return Config{
		Port:            envInt("ECHOMATE_PORT", 8760),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		Provider:        strings.ToLower(envStr("ECHOMATE_PROVIDER", ProviderGemini)),
		Model:           envStr("ECHOMATE_MODEL", ""),
		GeminiAPIKey:    envStr("GEMINI_API_KEY", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", ""),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		APIToken:        envStr("ECHOMATE_API_TOKEN", ""),
		MaxUploadMB:     envInt("ECHOMATE_MAX_UPLOAD_MB", 20),
	}
}

// LoadDotEnv loads the given env files (default ".env") without overriding
// variables already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks that the selected provider is known and has credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %s", c.Provider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %s", c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for provider %s", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("ECHOMATE_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
