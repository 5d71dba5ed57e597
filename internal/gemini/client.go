package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Config selects the model and, for tests or proxies, an alternate endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client generates persona replies through the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: 120 * time.Second},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends the prompt as one user content block and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	// Blocked prompts come back with no candidates.
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
