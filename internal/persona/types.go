package persona

import (
	"context"
	"time"
)

// Role tags a turn as coming from the operator or from the persona.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation log. Turns are appended in order and
// never modified afterwards.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Failed    bool      `json:"failed,omitempty"` // generator error substituted into Content
}

// Generator is the external text-generation call. One call per turn, no retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
