package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by every generation call when the provider key
// was absent at startup.
var ErrMissingAPIKey = errors.New("llm: api key not configured")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a chat history.
type Turn struct {
	Role Role
	Text string
}

type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	// JSON asks the provider for a strictly JSON reply.
	JSON bool
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     1,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
		JSON:            true,
	}
}

// Client sends a prompt, primed by history, to a hosted model and returns the
// raw reply text.
type Client interface {
	Generate(ctx context.Context, history []Turn, prompt string, cfg GenerationConfig) (string, error)
	Provider() string
	Model() string
}
