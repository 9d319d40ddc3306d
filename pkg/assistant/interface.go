package assistant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyResponse = errors.New("assistant: empty response")
	ErrNotConfigured = errors.New("assistant: provider not configured")
)

// JSONSchema asks the provider for structured output. Providers that cannot enforce
// a schema fall back to plain JSON mode.
type JSONSchema struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

type AssistantInput struct {
	// Instructions carry the full synthesis prompt.
	Instructions string
	Prompt       string
	Schema       *JSONSchema
}

type AssistantOutput struct {
	Id        string
	Text      string
	Provider  string
	CreatedAt time.Time
}

// Assistant answers one prompt synchronously.
type Assistant interface {
	Name() string
	ProcessPrompt(ctx context.Context, input AssistantInput) (*AssistantOutput, error)
}
