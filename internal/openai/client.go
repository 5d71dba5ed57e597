package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// Config for any OpenAI-compatible chat completions endpoint. BaseURL is
// optional; set it for Ollama, vLLM and similar servers.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Client struct {
	client *goopenai.Client
	model  string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai api key is required without a custom base url")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &Client{
		client: goopenai.NewClientWithConfig(oc),
		model:  model,
	}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends the persona prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return text, nil
}
